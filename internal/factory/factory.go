package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/letterstacks/internal/config"
	"github.com/mcoot/letterstacks/internal/dependencies/clock"
	"github.com/mcoot/letterstacks/internal/dependencies/random"
	"github.com/mcoot/letterstacks/internal/services/audit"
	"github.com/mcoot/letterstacks/internal/services/auth"
	"github.com/mcoot/letterstacks/internal/services/dictionary"
	"github.com/mcoot/letterstacks/internal/services/game"
	"github.com/mcoot/letterstacks/internal/services/loop"
	"github.com/mcoot/letterstacks/internal/services/scoreboard"
	"github.com/mcoot/letterstacks/internal/services/session"
	"github.com/mcoot/letterstacks/internal/services/settings"
	"github.com/mcoot/letterstacks/internal/services/spawn"
	"github.com/mcoot/letterstacks/internal/services/supply"
	"github.com/mcoot/letterstacks/internal/storage"
	"github.com/mcoot/letterstacks/internal/storage/memory"
	redisstorage "github.com/mcoot/letterstacks/internal/storage/redis"
	"github.com/mcoot/letterstacks/internal/storage/sqlite"
	"github.com/mcoot/letterstacks/internal/web/sse"
)

// App contains all wired application components
type App struct {
	Config config.Config

	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Game rules
	Supply    *supply.Service
	Scheduler *spawn.Scheduler
	Engine    *session.Engine
	Runner    *loop.Runner

	// Services
	DictionaryService *dictionary.Service
	SettingsService   *settings.Service
	ScoreboardService *scoreboard.Service
	AuthService       *auth.Service
	GameController    *game.Controller
	Auditor           *audit.Auditor
	HubManager        *sse.HubManager
	Broadcaster       *sse.Broadcaster

	Logger *slog.Logger
}

// Options controls how components are wired
type Options struct {
	// Logger is the application logger. If nil, a no-op logger is used.
	Logger *slog.Logger
	// AutoRun gives every live session its own frame runner
	AutoRun bool
	// Seed, when non-zero, replaces crypto randomness with a reproducible stream
	Seed uint64
}

// New creates a new application with all dependencies wired from cfg
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := NewStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	var rnd random.Random = random.New()
	if opts.Seed != 0 {
		rnd = random.NewSeeded(opts.Seed)
	}

	app, err := newWithDependencies(store, clock.New(), rnd, cfg, opts.AutoRun, logger)
	if err != nil {
		closeStorage(store)
		return nil, err
	}
	return app, nil
}

// NewStorage opens the configured storage backend
func NewStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (storage.Storage, error) {
	switch cfg.Type {
	case "", config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		store, err := redisstorage.New(redisstorage.ConfigFrom(cfg.Redis))
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		return store, nil
	case config.StorageSQLite:
		store, err := sqlite.New(ctx, sqlite.Config{
			Path:        cfg.SQLite.Path,
			BusyTimeout: cfg.SQLite.BusyTimeout,
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return store, nil
	default:
		return nil, errors.New("invalid storage type: must be 'memory', 'redis' or 'sqlite'")
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, cfg config.Config, autoRun bool, logger *slog.Logger) (*App, error) {
	authService, err := auth.New(clk, auth.Config{
		Secret:   []byte(cfg.Auth.Secret),
		TokenTTL: cfg.Auth.TokenTTL,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	supplyService := supply.New(rnd)
	scheduler := spawn.New(rnd, supplyService)
	engine := session.New(supplyService, scheduler, clk, session.Config{
		Rows: cfg.Game.Rows,
		Cols: cfg.Game.Cols,
	})
	runner := loop.New(clk, cfg.Game.FrameInterval, logger)

	dictService := dictionary.New(store, dictionary.Config{
		AllowAny: cfg.Dictionary.AllowAny,
		Logger:   logger,
	})
	settingsService := settings.New(store, logger)
	scoreboardService := scoreboard.New(store, logger)

	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	gameController := game.NewController(game.Dependencies{
		Storage:    store,
		Engine:     engine,
		Dictionary: dictService,
		Finder:     dictService,
		Settings:   settingsService,
		Scoreboard: scoreboardService,
		Runner:     runner,
		Publisher:  broadcaster,
		Clock:      clk,
		Random:     rnd,
	}, game.Config{
		AutoRun: autoRun,
		Logger:  logger,
	})

	return &App{
		Config:            cfg,
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Supply:            supplyService,
		Scheduler:         scheduler,
		Engine:            engine,
		Runner:            runner,
		DictionaryService: dictService,
		SettingsService:   settingsService,
		ScoreboardService: scoreboardService,
		AuthService:       authService,
		GameController:    gameController,
		Auditor:           audit.New(engine, scheduler, logger),
		HubManager:        hubManager,
		Broadcaster:       broadcaster,
		Logger:            logger,
	}, nil
}

// Close stops frame runners, disconnects SSE clients and closes storage
func (a *App) Close() error {
	a.GameController.Close()
	a.HubManager.Close()
	return closeStorage(a.Storage)
}

func closeStorage(store storage.Storage) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
