// Package download fetches individual resources and writes them to a
// story's directory, with bounded concurrency shared across stories.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/hnwatch/hnwatch/internal/storage"
)

// maxBodyBytes caps how much of a fetched resource is read and persisted.
const maxBodyBytes = 10 * 1024 * 1024 // 10 MB

// shortHashLen is the number of hex digits of the URL digest mixed into
// derived filenames.
const shortHashLen = 10

// maxFilenameBase bounds the sanitized segment portion of a filename.
const maxFilenameBase = 80

// Result describes a completed download.
type Result struct {
	// Path is the full path of the written file.
	Path string
	// Size is the number of bytes written.
	Size int
}

// Downloader fetches resources and writes them through a FileStore.
// There is no automatic retry; a failed download surfaces as an *Error
// and is re-attempted naturally on the next process run, since writes
// overwrite idempotently. Retry policy is a deliberate extension point.
type Downloader struct {
	client    *http.Client
	store     *storage.FileStore
	timeout   time.Duration
	userAgent string
}

// NewDownloader creates a downloader using the given HTTP client and store.
// timeout bounds each individual fetch.
func NewDownloader(client *http.Client, store *storage.FileStore, timeout time.Duration, userAgent string) *Downloader {
	return &Downloader{
		client:    client,
		store:     store,
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Download fetches rawURL and writes the body into dir, overwriting any
// existing file of the same name. The destination filename is derived
// from the URL and is unique per distinct URL within a directory.
func (d *Downloader) Download(ctx context.Context, rawURL, dir string) (*Result, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &Error{URL: rawURL, Kind: KindNetwork, Cause: err}
	}

	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, doErr := d.client.Do(req)
	if doErr != nil {
		return nil, &Error{URL: rawURL, Kind: KindNetwork, Cause: doErr}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &Error{URL: rawURL, Kind: KindStatus, StatusCode: resp.StatusCode, Cause: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if readErr != nil {
		return nil, &Error{URL: rawURL, Kind: KindNetwork, Cause: readErr}
	}

	name := Filename(rawURL, resp.Header.Get("Content-Type"))

	written, writeErr := d.store.WriteFile(dir, name, body)
	if writeErr != nil {
		return nil, &Error{URL: rawURL, Kind: KindStorage, Cause: writeErr}
	}

	return &Result{Path: written, Size: len(body)}, nil
}

// Filename derives a safe destination filename from a URL.
//
// The name is the sanitized last path segment plus a short digest of the
// full URL, so distinct URLs sharing a basename never collide and the
// same URL always maps to the same file. When the segment carries no
// extension, one is guessed from contentType. The result never contains
// path separators or leading dots.
func Filename(rawURL, contentType string) string {
	digest := sha256.Sum256([]byte(rawURL))
	suffix := hex.EncodeToString(digest[:])[:shortHashLen]

	base, ext := splitSegment(rawURL)

	base = sanitize(base)
	if len(base) > maxFilenameBase {
		base = base[:maxFilenameBase]
	}

	if ext == "" {
		ext = extensionFor(contentType)
	}

	if base == "" {
		return suffix + ext
	}

	return base + "-" + suffix + ext
}

// splitSegment returns the last path segment of rawURL split into base
// name and extension. Both are empty when the URL has no usable segment.
func splitSegment(rawURL string) (string, string) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}

	segment := path.Base(parsed.Path)
	if segment == "." || segment == "/" {
		return "", ""
	}

	ext := path.Ext(segment)
	base := strings.TrimSuffix(segment, ext)

	// An extension needs something before the dot and a short suffix
	// after it; anything else is part of the name.
	if len(ext) > 6 || base == "" {
		return strings.TrimPrefix(segment, "."), ""
	}

	return base, ext
}

// sanitize keeps alphanumerics, dash, underscore and dot, replacing the
// rest, and strips leading dots so a name can never be hidden or escape
// its directory.
func sanitize(name string) string {
	var b strings.Builder

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	return strings.TrimLeft(b.String(), ".")
}

// extensionFor guesses a file extension from a Content-Type header value.
func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}

	// Common types first; mime's table ordering is platform-dependent.
	switch mediaType {
	case "text/html":
		return ".html"
	case "text/plain":
		return ".txt"
	case "application/json":
		return ".json"
	}

	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}

	return exts[0]
}
