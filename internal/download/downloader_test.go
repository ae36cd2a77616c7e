package download_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnwatch/hnwatch/internal/download"
	"github.com/hnwatch/hnwatch/internal/storage"
)

const testTimeout = 5 * time.Second

func newStore(t *testing.T) *storage.FileStore {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	return store
}

func TestDownloadWritesFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html>resource</html>"))
	}))
	defer server.Close()

	store := newStore(t)
	dir, err := store.EnsureStoryDir(1)
	require.NoError(t, err)

	d := download.NewDownloader(server.Client(), store, testTimeout, "hnwatch-test/1.0")

	result, err := d.Download(context.Background(), server.URL+"/article", dir)
	require.NoError(t, err)

	content, readErr := os.ReadFile(result.Path)
	require.NoError(t, readErr)
	assert.Equal(t, "<html>resource</html>", string(content))
	assert.Equal(t, len(content), result.Size)
	assert.True(t, strings.HasPrefix(result.Path, dir))
	assert.True(t, strings.HasSuffix(result.Path, ".html"), "expected content-type extension, got %s", result.Path)
}

func TestDownloadIsIdempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("same bytes"))
	}))
	defer server.Close()

	store := newStore(t)
	dir, err := store.EnsureStoryDir(1)
	require.NoError(t, err)

	d := download.NewDownloader(server.Client(), store, testTimeout, "")

	first, err := d.Download(context.Background(), server.URL+"/res.txt", dir)
	require.NoError(t, err)

	second, err := d.Download(context.Background(), server.URL+"/res.txt", dir)
	require.NoError(t, err)

	assert.Equal(t, first.Path, second.Path)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Len(t, entries, 1)
}

func TestDownloadNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	store := newStore(t)
	dir, err := store.EnsureStoryDir(1)
	require.NoError(t, err)

	d := download.NewDownloader(server.Client(), store, testTimeout, "")

	_, err = d.Download(context.Background(), server.URL+"/missing", dir)
	require.Error(t, err)

	var dlErr *download.Error
	require.True(t, errors.As(err, &dlErr))
	assert.Equal(t, download.KindStatus, dlErr.Kind)
	assert.Equal(t, http.StatusGone, dlErr.StatusCode)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "failed download must not leave a file")
}

func TestDownloadNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	store := newStore(t)
	dir, err := store.EnsureStoryDir(1)
	require.NoError(t, err)

	d := download.NewDownloader(http.DefaultClient, store, testTimeout, "")

	_, err = d.Download(context.Background(), server.URL, dir)
	require.Error(t, err)

	var dlErr *download.Error
	require.True(t, errors.As(err, &dlErr))
	assert.Equal(t, download.KindNetwork, dlErr.Kind)
}

func TestDownloadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	store := newStore(t)
	dir, err := store.EnsureStoryDir(1)
	require.NoError(t, err)

	d := download.NewDownloader(server.Client(), store, 50*time.Millisecond, "")

	start := time.Now()
	_, err = d.Download(context.Background(), server.URL, dir)

	require.Error(t, err)
	assert.Less(t, time.Since(start), testTimeout)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		contentType string
	}{
		{"plain segment", "https://a.com/docs/report.pdf", ""},
		{"no segment", "https://a.com/", "text/html"},
		{"query only", "https://a.com/?page=2", "text/html"},
		{"traversal attempt", "https://a.com/../../etc/passwd", ""},
		{"encoded traversal", "https://a.com/%2e%2e%2f%2e%2e%2fetc", ""},
		{"hidden file", "https://a.com/.htaccess", ""},
		{"unicode segment", "https://a.com/статья", "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := download.Filename(tt.url, tt.contentType)

			assert.NotEmpty(t, name)
			assert.NotContains(t, name, "/")
			assert.NotContains(t, name, "\\")
			assert.False(t, strings.HasPrefix(name, "."), "name must not be hidden or traversal-capable: %q", name)
			assert.False(t, strings.Contains(name, ".."), "name must not contain dot-dot: %q", name)
		})
	}
}

func TestFilenameKeepsRecognizableBase(t *testing.T) {
	name := download.Filename("https://a.com/docs/report.pdf", "")

	assert.True(t, strings.HasPrefix(name, "report-"), "got %q", name)
	assert.True(t, strings.HasSuffix(name, ".pdf"), "got %q", name)
}

func TestFilenameDistinctURLsSameBasename(t *testing.T) {
	a := download.Filename("https://a.com/report.pdf", "")
	b := download.Filename("https://b.com/report.pdf", "")

	assert.NotEqual(t, a, b, "distinct URLs must never share a filename")
}

func TestFilenameStableForSameURL(t *testing.T) {
	first := download.Filename("https://a.com/x/y.html", "")
	second := download.Filename("https://a.com/x/y.html", "")

	assert.Equal(t, first, second)
}

func TestFilenameGuessesExtensionFromContentType(t *testing.T) {
	name := download.Filename("https://a.com/some-article", "text/html; charset=utf-8")

	assert.True(t, strings.HasSuffix(name, ".html"), "got %q", name)
}
