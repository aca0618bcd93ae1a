package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mcoot/letterstacks/internal/api"
	"github.com/mcoot/letterstacks/internal/config"
	"github.com/mcoot/letterstacks/internal/factory"
)

// hubJanitorInterval is how often event hubs with no clients are dropped
const hubJanitorInterval = time.Minute

func main() {
	configPath := flag.String("config", "", "Config file (default: $LETTERSTACKS_CONFIG or config.yaml)")
	flag.Parse()

	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	lookup, err := config.Environment(".env")
	if err != nil {
		logger.Error("failed to read .env", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath, lookup)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, cfg, factory.Options{Logger: logger, AutoRun: true})
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	// The server stays up without a dictionary; every word is then rejected
	if err := app.DictionaryService.Load(ctx, cfg.Dictionary.Path); err != nil {
		logger.Warn("dictionary not loaded", slog.String("path", cfg.Dictionary.Path), slog.String("error", err.Error()))
	}

	go app.HubManager.RunJanitor(ctx, hubJanitorInterval)

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		AuthService:       app.AuthService,
		GameController:    app.GameController,
		SettingsService:   app.SettingsService,
		ScoreboardService: app.ScoreboardService,
		DictionaryService: app.DictionaryService,
		HubManager:        app.HubManager,
	})
	server := api.NewServer(router, api.ServerConfigFrom(cfg.Server), logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.Storage.Type),
		slog.Int("dictionary_words", app.DictionaryService.WordCount()),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}
