// Package main is the entry point for the cricket commentary scraper
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/myusername/cricket-commentary-scraper/internal/config"
	"github.com/myusername/cricket-commentary-scraper/internal/export"
	"github.com/myusername/cricket-commentary-scraper/internal/logging"
	"github.com/myusername/cricket-commentary-scraper/internal/notify"
	"github.com/myusername/cricket-commentary-scraper/internal/pipeline"
	"github.com/myusername/cricket-commentary-scraper/internal/store"
	"github.com/myusername/cricket-commentary-scraper/internal/utils"
	"github.com/myusername/cricket-commentary-scraper/pkg/scraper"
)

// Version is set during build using ldflags
var (
	version = "dev"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	outputFlag := flag.String("output", "", "Output directory for exported datasets (default: EXPORT_DIR)")
	snapshotsFlag := flag.String("snapshots", "", "Directory for rendered page snapshots (default: SNAPSHOT_DIR)")
	scheduleFlag := flag.String("schedule-url", "", "Schedule page listing the matches to scrape")
	matchFlag := flag.String("match-url", "", "Comma separated full scorecard URLs; skips schedule discovery")
	workersFlag := flag.Int("workers", 0, "Number of matches processed in parallel")
	offlineFlag := flag.Bool("offline", false, "Replay saved snapshots instead of opening a browser")
	retryFlag := flag.Bool("retry-failed", false, "Also retry matches whose last attempt failed (needs DB_URL)")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("cricket-scraper version %s\n", version)
		return
	}

	envFile := config.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *outputFlag != "" {
		cfg.ExportDir = *outputFlag
	}
	if *snapshotsFlag != "" {
		cfg.SnapshotDir = *snapshotsFlag
	}
	if *scheduleFlag != "" {
		cfg.ScheduleURL = *scheduleFlag
	}
	if *workersFlag > 0 {
		cfg.Workers = *workersFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Format(cfg.LogFormat), cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	log.Info("cricket scraper starting", "version", version, "env_file", envFile, "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := runOptions{matchURLs: splitURLs(*matchFlag), offline: *offlineFlag, retryFailed: *retryFlag}
	if err := run(ctx, cfg, log, opts); err != nil {
		log.Error("scrape failed", "error", err)
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("scraping complete")
}

type runOptions struct {
	matchURLs   []string
	offline     bool
	retryFailed bool
}

func run(ctx context.Context, cfg config.Config, log *logging.Logger, opts runOptions) error {
	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	proc := &pipeline.Processor{Retry: cfg.RetryPolicy()}
	var tracker pipeline.Tracker
	var downloads *store.Tracker

	if cfg.DatabaseEnabled() {
		if cfg.DBAutoMigrate {
			if err := store.Migrate(cfg.DBDriver, cfg.DBURL); err != nil {
				return err
			}
		}
		db, err := store.Open(ctx, cfg.DBDriver, cfg.DBURL)
		if err != nil {
			return err
		}
		defer db.Close()

		proc.Repo = store.NewRepository(db)
		downloads = store.NewTracker(db)
		tracker = downloads
		proc.Tracker = tracker
	} else {
		log.Warn("DB_URL not set, records are only exported to files")
	}

	formats, err := exportFormats(cfg)
	if err != nil {
		return err
	}
	proc.Exporter = export.NewExporter(export.NewFSStore(cfg.ExportDir), cfg.ExportPrefix, formats)

	snapshots := scraper.NewDirSource(cfg.SnapshotDir)
	var browser *scraper.BrowserSource
	if opts.offline {
		proc.Source = snapshots
	} else {
		browser = scraper.NewBrowserSource(scraper.BrowserConfig{
			RemoteURL:    cfg.ChromeURL,
			Headless:     cfg.Headless,
			PageTimeout:  cfg.PageTimeout,
			ScrollPasses: cfg.ScrollPasses,
			ScrollDelay:  cfg.ScrollDelay,
			Retry:        cfg.RetryPolicy(),
		}, log)
		proc.Source = &scraper.CachingSource{Cache: snapshots, Upstream: browser, Log: log}
	}

	runner := pipeline.NewRunner(proc, tracker, cfg.Workers, log)
	proc.Log = runner.Logger()
	if err := runner.Seed(ctx); err != nil {
		return err
	}

	matchURLs := opts.matchURLs
	if len(matchURLs) == 0 {
		matchURLs, err = discoverMatches(ctx, cfg, runner.Logger(), snapshots, browser)
		if err != nil {
			return err
		}
	}
	if opts.retryFailed && downloads != nil {
		failed, err := downloads.Failed(ctx)
		if err != nil {
			return err
		}
		for _, entry := range failed {
			if entry.SourceURL != "" {
				matchURLs = append(matchURLs, entry.SourceURL)
			}
		}
		runner.Logger().Info("retrying failed matches", "count", len(failed))
	}
	runner.Logger().Info("matches to process", "count", len(matchURLs))

	results, summary, err := runner.Run(ctx, matchURLs)
	if err != nil {
		return err
	}

	for _, r := range results {
		if len(r.Players) > 0 {
			utils.DisplayMatchSummary(os.Stdout, r)
		}
	}
	utils.DisplayRunSummary(os.Stdout, results)

	summaryPath := filepath.Join(cfg.ExportDir, fmt.Sprintf("run_%s.csv", summary.RunID))
	if err := utils.SaveRunSummaryToCSV(results, summaryPath); err != nil {
		runner.Logger().Warn("could not save run summary", "error", err)
	} else {
		runner.Logger().Info("saved run summary", "path", summaryPath)
	}

	if downloads != nil {
		if stats, err := downloads.Stats(ctx); err == nil {
			runner.Logger().Info("download tracker",
				"total", stats.Total,
				"completed", stats.Completed,
				"partial", stats.Partial,
				"failed", stats.Failed)
		}
	}

	if cfg.DiscordWebhook != "" {
		discord, err := notify.NewDiscord(cfg.DiscordWebhook)
		if err != nil {
			runner.Logger().Warn("discord notifications disabled", "error", err)
		} else if err := discord.NotifyRun(ctx, summary, results); err != nil {
			runner.Logger().Warn("could not send run summary", "error", err)
		}
	}
	return nil
}

func discoverMatches(ctx context.Context, cfg config.Config, log *logging.Logger, snapshots *scraper.DirSource, browser *scraper.BrowserSource) ([]string, error) {
	if browser == nil {
		urls, err := snapshots.MatchURLs()
		if err != nil {
			return nil, errors.Wrap(err, "list saved snapshots")
		}
		return urls, nil
	}

	return scraper.FetchSchedule(ctx, cfg.ScheduleURL, cfg.RetryPolicy(), log, scraper.HTTPFetcher{}, browser)
}

func exportFormats(cfg config.Config) (export.Formats, error) {
	events, err := export.ParseFormat(cfg.EventsFormat)
	if err != nil {
		return export.Formats{}, err
	}
	metadata, err := export.ParseFormat(cfg.MetadataFormat)
	if err != nil {
		return export.Formats{}, err
	}
	players, err := export.ParseFormat(cfg.PlayersFormat)
	if err != nil {
		return export.Formats{}, err
	}
	return export.Formats{Events: events, Metadata: metadata, Players: players}, nil
}

func splitURLs(raw string) []string {
	var urls []string
	for _, u := range strings.Split(raw, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
