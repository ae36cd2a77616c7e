// Package story processes one dispatched story: it fetches the comment
// thread, extracts comment links, and fans the downloads out through the
// shared admission gate.
package story

import (
	"context"
	"net/http"
	"sync"

	"github.com/hnwatch/hnwatch/internal/download"
	"github.com/hnwatch/hnwatch/internal/extract"
	"github.com/hnwatch/hnwatch/internal/frontpage"
	"github.com/hnwatch/hnwatch/internal/logger"
	"github.com/hnwatch/hnwatch/internal/metrics"
)

// Downloader fetches one resource into a directory.
type Downloader interface {
	Download(ctx context.Context, url, dir string) (*download.Result, error)
}

// DirEnsurer creates the story's directory on demand.
type DirEnsurer interface {
	EnsureStoryDir(id int64) (string, error)
}

// Processor turns one story into downloaded files. A Processor is shared
// across stories; all per-story state lives on the stack of Process.
type Processor struct {
	fetcher    frontpage.Fetcher
	downloader Downloader
	store      DirEnsurer
	gate       *download.Gate
	metrics    *metrics.Metrics
	log        logger.Interface

	// fetchArticle also downloads the story's own article URL into the
	// story directory, alongside its comment links.
	fetchArticle bool
}

// NewProcessor creates a story processor.
func NewProcessor(
	fetcher frontpage.Fetcher,
	downloader Downloader,
	store DirEnsurer,
	gate *download.Gate,
	m *metrics.Metrics,
	log logger.Interface,
	fetchArticle bool,
) *Processor {
	return &Processor{
		fetcher:      fetcher,
		downloader:   downloader,
		store:        store,
		gate:         gate,
		metrics:      m,
		log:          log,
		fetchArticle: fetchArticle,
	}
}

// Process handles one story to completion. It never propagates a failure
// outward: every error is logged and absorbed so one story cannot stall
// the poll loop or its sibling processors. Process returns only after all
// of the story's downloads have been attempted.
func (p *Processor) Process(ctx context.Context, s frontpage.Story) {
	log := p.log.With("story_id", s.ID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("story processor panicked", "panic", r)
			p.metrics.RecordStoryFailure()
		}
	}()

	urls, ok := p.collectURLs(ctx, s, log)
	if !ok {
		p.metrics.RecordStoryFailure()
		return
	}

	if len(urls) == 0 {
		log.Info("story has no downloadable links")
		return
	}

	// The directory must exist before any download starts.
	dir, err := p.store.EnsureStoryDir(s.ID)
	if err != nil {
		log.Error("failed to create story directory", "error", err.Error())
		p.metrics.RecordStoryFailure()

		return
	}

	succeeded := p.downloadAll(ctx, urls, dir, log)

	log.Info("story processed",
		"links", len(urls),
		"downloaded", succeeded,
		"failed", len(urls)-succeeded,
	)
}

// collectURLs fetches the comment page and returns the story's download
// set: extracted comment links plus, optionally, the article itself.
// Returns ok=false when the comment fetch fails.
func (p *Processor) collectURLs(ctx context.Context, s frontpage.Story, log logger.Interface) ([]string, bool) {
	resp, err := p.fetcher.Fetch(ctx, s.CommentsURL)
	if err != nil {
		log.Warn("comment fetch failed",
			"comments_url", s.CommentsURL,
			"error", err.Error(),
		)

		return nil, false
	}

	if resp.StatusCode != http.StatusOK {
		log.Warn("comment fetch returned non-success status",
			"comments_url", s.CommentsURL,
			"status", resp.StatusCode,
		)

		return nil, false
	}

	links := extract.CommentLinks(string(resp.Body))

	if !p.fetchArticle || s.URL == "" {
		return links, true
	}

	// The article leads the list; a comment linking the article itself
	// collapses into it.
	urls := make([]string, 0, len(links)+1)
	urls = append(urls, s.URL)

	for _, link := range links {
		if link != s.URL {
			urls = append(urls, link)
		}
	}

	return urls, true
}

// downloadAll fans the URLs out through the admission gate and waits for
// every download to finish. Returns the number that succeeded.
func (p *Processor) downloadAll(ctx context.Context, urls []string, dir string, log logger.Interface) int {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for _, u := range urls {
		wg.Add(1)

		go func(target string) {
			defer wg.Done()

			defer func() {
				if r := recover(); r != nil {
					log.Error("download panicked", "url", target, "panic", r)
				}
			}()

			if err := p.gate.Acquire(ctx); err != nil {
				log.Warn("download cancelled before start", "url", target)
				p.metrics.RecordDownload(0, err)

				return
			}
			defer p.gate.Release()

			result, err := p.downloader.Download(ctx, target, dir)
			if err != nil {
				log.Warn("download failed", "url", target, "error", err.Error())
				p.metrics.RecordDownload(0, err)

				return
			}

			p.metrics.RecordDownload(result.Size, nil)
			log.Debug("downloaded", "url", target, "path", result.Path, "bytes", result.Size)

			mu.Lock()
			succeeded++
			mu.Unlock()
		}(u)
	}

	wg.Wait()

	return succeeded
}
