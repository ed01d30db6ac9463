package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ptkhanh/herald/internal/ai"
	"github.com/ptkhanh/herald/internal/api"
	"github.com/ptkhanh/herald/internal/config"
	"github.com/ptkhanh/herald/internal/feeds"
	"github.com/ptkhanh/herald/internal/pipeline"
	"github.com/ptkhanh/herald/internal/publish"
	"github.com/ptkhanh/herald/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dataDir := flag.String("data-dir", "./data", "path to data directory")
	flag.Parse()

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure data directory exists.
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// Open database with WAL mode and pragmas.
	db, err := storage.OpenDatabase(filepath.Join(*dataDir, "herald.db"))
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run schema migrations.
	if err := storage.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	store := storage.NewStore(db)

	// Create the summarizer (nil if no API key -- the pipeline falls back
	// to extractive formatting).
	var summarizer ai.Summarizer
	if cfg.AI.APIKey != "" {
		summarizer, err = ai.NewSummarizer(ai.ProviderConfig{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
		})
		if err != nil {
			slog.Error("failed to create summarizer", "error", err)
			os.Exit(1)
		}
		slog.Info("summarizer configured", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	} else {
		slog.Warn("no AI API key configured, summaries will be extractive")
	}

	fetcher := feeds.NewFetcher()

	dispatcher := publish.NewDispatcher(
		publish.NewXClient(cfg.Platforms.X),
		publish.NewBlueskyClient(cfg.Platforms.Bluesky),
		publish.NewDiscordWebhook(cfg.Platforms.Discord),
	)
	if names := dispatcher.Configured(); len(names) > 0 {
		slog.Info("publish platforms configured", "platforms", names)
	} else {
		slog.Warn("no publish platforms configured, runs will fail until one is set up")
	}

	runner := pipeline.NewRunner(fetcher, summarizer, dispatcher, store, store, cfg.Poll.SafetyBuffer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Localhost only; this is an operator surface, not a public API.
	addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewRouter(cfg, runner, dispatcher.Configured()),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting server", "addr", "http://"+addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		runScheduler(ctx, cfg, runner)
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// runScheduler polls every stream on the configured interval until the
// context is cancelled. The first cycle runs immediately so a fresh deploy
// does not wait a full interval before its first check.
func runScheduler(ctx context.Context, cfg *config.Config, runner *pipeline.Runner) {
	interval := time.Duration(cfg.Poll.IntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runAll := func() {
		for _, stream := range cfg.Streams {
			if ctx.Err() != nil {
				return
			}
			if err := runner.RunStream(ctx, stream, false); err != nil {
				slog.Error("stream run failed", "stream", stream.Name, "error", err)
			}
		}
	}

	runAll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runAll()
		}
	}
}
