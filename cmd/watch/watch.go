// Package watch implements the watch command: the long-running loop that
// polls the front page and downloads comment links for new stories.
package watch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/hnwatch/hnwatch/internal/config"
	"github.com/hnwatch/hnwatch/internal/download"
	"github.com/hnwatch/hnwatch/internal/frontpage"
	"github.com/hnwatch/hnwatch/internal/logger"
	"github.com/hnwatch/hnwatch/internal/metrics"
	"github.com/hnwatch/hnwatch/internal/poller"
	"github.com/hnwatch/hnwatch/internal/registry"
	"github.com/hnwatch/hnwatch/internal/storage"
	"github.com/hnwatch/hnwatch/internal/story"
)

// drainTimeout bounds how long shutdown waits for in-flight stories.
const drainTimeout = 30 * time.Second

// Command returns the watch command.
func Command() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the front page and download comment links continuously",
		Long: `Polls the front page on a fixed interval. Each story appearing for
the first time is fetched, the links in its comments are extracted, and
the linked resources are downloaded into a directory named by the story
ID. Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			return run(cfg, once)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single poll tick and exit")

	return cmd
}

// run wires the components and drives the loop until a signal arrives.
func run(cfg *config.Config, once bool) error {
	log, err := logger.New(&logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Development: cfg.Logger.Development,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := storage.NewFileStore(cfg.Watch.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	parser, err := frontpage.NewParser(cfg.Watch.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// One client for page fetches and downloads; per-request deadlines
	// come from the client timeout and the downloader's own context.
	client := &http.Client{Timeout: cfg.Watch.DownloadTimeout}

	m := metrics.New()
	gate := download.NewGate(cfg.Watch.MaxConcurrentDownloads)
	fetcher := frontpage.NewHTTPFetcher(client, cfg.Watch.UserAgent)
	downloader := download.NewDownloader(client, store, cfg.Watch.DownloadTimeout, cfg.Watch.UserAgent)
	processor := story.NewProcessor(fetcher, downloader, store, gate, m, log, cfg.Watch.FetchStoryArticle)
	seen := registry.NewSeen()

	p := poller.New(fetcher, parser, seen, processor, m, log,
		cfg.Watch.BaseURL, cfg.Watch.TopStoryCount)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("watch started",
		"base_url", cfg.Watch.BaseURL,
		"poll_interval", cfg.Watch.PollInterval.String(),
		"top_story_count", cfg.Watch.TopStoryCount,
		"max_concurrent_downloads", cfg.Watch.MaxConcurrentDownloads,
		"output_dir", cfg.Watch.OutputDir,
	)

	if once {
		p.PollTick(ctx)
		p.Wait()
		printSummary(m.Snapshot())

		return nil
	}

	if err := runScheduled(ctx, p, cfg.Watch.PollInterval, log); err != nil {
		return err
	}

	printSummary(m.Snapshot())

	return nil
}

// runScheduled drives PollTick on a fixed interval via a cron scheduler
// until ctx is cancelled, then drains in-flight stories.
func runScheduled(ctx context.Context, p *poller.Poller, interval time.Duration, log logger.Interface) error {
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
		cron.Recover(cron.DiscardLogger),
	))

	_, err := scheduler.AddFunc("@every "+interval.String(), func() {
		p.PollTick(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule poll: %w", err)
	}

	// First tick runs to completion before the schedule starts.
	// SkipIfStillRunning only serializes cron-invoked runs, so starting
	// the scheduler first would let an early fire overlap this tick and
	// race on the seen-registry.
	p.PollTick(ctx)

	scheduler.Start()

	<-ctx.Done()
	log.Info("shutdown signal received")

	// Let a tick in progress finish, then wait for its stories.
	<-scheduler.Stop().Done()

	drained := make(chan struct{})
	go func() {
		p.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		log.Info("all stories drained")
	case <-time.After(drainTimeout):
		log.Warn("drain timeout exceeded, abandoning in-flight downloads")
	}

	return nil
}

// printSummary renders the run counters as a table on stdout.
func printSummary(s metrics.Snapshot) {
	t := newSummaryTable(s)
	t.Render()
}
