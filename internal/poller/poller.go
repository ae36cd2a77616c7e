// Package poller drives the watch loop: on each tick it fetches the
// front page, diffs the listed stories against the seen-registry, and
// dispatches new stories to the story processor.
package poller

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hnwatch/hnwatch/internal/frontpage"
	"github.com/hnwatch/hnwatch/internal/logger"
	"github.com/hnwatch/hnwatch/internal/metrics"
)

// StoryProcessor handles one dispatched story to completion.
type StoryProcessor interface {
	Process(ctx context.Context, s frontpage.Story)
}

// Registry tracks dispatched story IDs. The poller is its single writer;
// see the registry package for the ownership contract.
type Registry interface {
	Has(id int64) bool
	MarkSeen(id int64)
}

// StoryParser turns front-page HTML into stories.
type StoryParser interface {
	Parse(body []byte) []frontpage.Story
}

// Poller periodically polls the front page and dispatches new stories.
type Poller struct {
	fetcher   frontpage.Fetcher
	parser    StoryParser
	seen      Registry
	processor StoryProcessor
	metrics   *metrics.Metrics
	log       logger.Interface

	frontPageURL string
	topCount     int

	// wg tracks in-flight story processors across all ticks.
	wg sync.WaitGroup
}

// New creates a poller. frontPageURL is fetched each tick; at most
// topCount listed stories are considered per tick.
func New(
	fetcher frontpage.Fetcher,
	parser StoryParser,
	seen Registry,
	processor StoryProcessor,
	m *metrics.Metrics,
	log logger.Interface,
	frontPageURL string,
	topCount int,
) *Poller {
	return &Poller{
		fetcher:      fetcher,
		parser:       parser,
		seen:         seen,
		processor:    processor,
		metrics:      m,
		log:          log,
		frontPageURL: frontPageURL,
		topCount:     topCount,
	}
}

// PollTick runs one front-page-check-and-dispatch cycle. Dispatch is
// fire-and-forget: the tick returns once every new story has been handed
// to a processor goroutine, never waiting for processing to finish. A
// failed front-page fetch abandons the tick without marking anything seen.
func (p *Poller) PollTick(ctx context.Context) {
	log := p.log.With("tick_id", uuid.NewString())

	stories, ok := p.fetchFrontPage(ctx, log)
	if !ok {
		p.metrics.RecordTick(true)
		return
	}

	if len(stories) > p.topCount {
		stories = stories[:p.topCount]
	}

	dispatched := 0

	for _, s := range stories {
		if p.seen.Has(s.ID) {
			log.Debug("story already seen", "story_id", s.ID)
			continue
		}

		// Mark before dispatch, not after completion: a slow story must
		// not be re-dispatched by the next tick.
		p.seen.MarkSeen(s.ID)
		p.dispatch(ctx, s)

		dispatched++
	}

	p.metrics.RecordTick(false)
	log.Info("poll tick complete",
		"listed", len(stories),
		"dispatched", dispatched,
	)
}

// fetchFrontPage fetches and parses the front page. Failures are
// classified and logged at the severity the classification calls for.
func (p *Poller) fetchFrontPage(ctx context.Context, log logger.Interface) ([]frontpage.Story, bool) {
	resp, err := p.fetcher.Fetch(ctx, p.frontPageURL)
	if err != nil {
		p.logFetchError(log, frontpage.ClassifyNetworkError(err, p.frontPageURL))
		return nil, false
	}

	if resp.StatusCode != http.StatusOK {
		p.logFetchError(log, frontpage.ClassifyHTTPStatus(resp.StatusCode, p.frontPageURL))
		return nil, false
	}

	return p.parser.Parse(resp.Body), true
}

// dispatch launches the processor for one story in its own goroutine.
// The processor carries its own error boundary; nothing a story does can
// take the poll loop down.
func (p *Poller) dispatch(ctx context.Context, s frontpage.Story) {
	p.metrics.RecordDispatch()
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		p.processor.Process(ctx, s)
	}()
}

// logFetchError logs a classified front-page failure.
func (p *Poller) logFetchError(log logger.Interface, fetchErr *frontpage.FetchError) {
	fields := []any{
		"type", string(fetchErr.Type),
		"error", fetchErr.Error(),
	}

	if fetchErr.Level == frontpage.LevelError {
		log.Error("poll tick abandoned", fields...)
		return
	}

	log.Warn("poll tick abandoned", fields...)
}

// Run polls on a fixed interval until ctx is cancelled, starting with an
// immediate tick. It returns nil on clean shutdown.
func (p *Poller) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.PollTick(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("poll loop stopped")
			return nil
		case <-ticker.C:
			p.PollTick(ctx)
		}
	}
}

// Wait blocks until every dispatched story processor has finished. Used
// for clean shutdown after the loop stops.
func (p *Poller) Wait() {
	p.wg.Wait()
}
