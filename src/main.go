package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/contre95/lyricsolid/src/features/config"
	"github.com/contre95/lyricsolid/src/features/hosting"
	"github.com/contre95/lyricsolid/src/features/logging"
	"github.com/contre95/lyricsolid/src/features/lyrics"
	"github.com/contre95/lyricsolid/src/features/metrics"
	"github.com/contre95/lyricsolid/src/infra/database"
	"github.com/contre95/lyricsolid/src/infra/files"
	"github.com/contre95/lyricsolid/src/infra/httpclient"
	"github.com/contre95/lyricsolid/src/infra/providers"
	"github.com/contre95/lyricsolid/src/infra/tag"
	"github.com/contre95/lyricsolid/src/infra/watcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := "config.yaml"
	if p := os.Getenv("LYRICS_CONFIG"); p != "" {
		configPath = p
	}

	// Load configuration
	cfgManager, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := cfgManager.Get()

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Create the history database
	var history *database.SqliteHistory
	if cfg.Database.Enabled {
		history, err = database.NewSqliteHistory(cfg.Database.Path)
		if err != nil {
			log.Fatalf("failed to open history database: %v", err)
		}
		defer history.Close()
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(registry)

	// Create the lyrics providers
	client := httpclient.New(cfg.HTTP)

	tiers := lyrics.DefaultTiers(
		providers.NewLRCLibProvider(client, cfgManager, providers.LRCLibBaseURL),
		providers.NewAggregator(cfgManager, providers.DefaultBackends(client, cfgManager)...),
		providers.NewQQMusicProvider(client, cfgManager, providers.QQMusicSearchURL, providers.QQMusicLyricURL),
		providers.NewWebSearchProvider(client, cfgManager, recorder.CandidateRejected, providers.DuckDuckGoURL),
	)

	// Create the lyrics service
	store := files.NewLyricsStore(cfgManager)
	var historyRepo lyrics.HistoryRepository
	var historyStats metrics.HistoryStats
	if history != nil {
		historyRepo = history
		historyStats = history
	}
	lyricsService := lyrics.NewService(tiers, store, historyRepo, tag.NewTagReader(), recorder, cfgManager)
	lyricsHandler := lyrics.NewHandler(lyricsService, lyrics.NewPathGuard(cfgManager))
	metricsHandler := metrics.NewHandler(metrics.NewService(historyStats))

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, lyricsHandler, metricsHandler, registry)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfg.Server.Port, "media_paths", cfg.MediaPaths)

	// Watch the config file for edits
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	configEvents := make(chan watcher.FileEvent, 1)
	configWatcher, err := watcher.NewWatcher(configEvents)
	if err != nil {
		slog.Warn("Config file watching disabled", "error", err)
	} else if err := configWatcher.Start(ctx, configPath); err != nil {
		slog.Warn("Config file watching disabled", "path", configPath, "error", err)
	} else {
		defer configWatcher.Stop()
	}

	// Reload the configuration on SIGHUP or file changes, wait for a shutdown signal otherwise
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	reload := func() {
		if err := cfgManager.Reload(configPath); err != nil {
			slog.Error("Failed to reload configuration", "error", err)
		}
	}
loop:
	for {
		select {
		case sig := <-signals:
			if sig != syscall.SIGHUP {
				break loop
			}
			reload()
		case ev := <-configEvents:
			if ev.EventType != watcher.FileRemoved {
				reload()
			}
		}
	}
	slog.Info("Shutting down server...")

	// Shutdown the server
	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
