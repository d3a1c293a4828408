package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/pairsync/pairsync/internal/dependencies/clock"
	"github.com/pairsync/pairsync/internal/dependencies/random"
	"github.com/pairsync/pairsync/internal/services/auth"
	"github.com/pairsync/pairsync/internal/services/collection"
	"github.com/pairsync/pairsync/internal/services/reveal"
	"github.com/pairsync/pairsync/internal/storage"
	"github.com/pairsync/pairsync/internal/storage/memory"
	redisstorage "github.com/pairsync/pairsync/internal/storage/redis"
	"github.com/pairsync/pairsync/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	AuthService       *auth.Service
	CollectionService *collection.Service
	RevealService     *reveal.Service

	// Transport
	Hub         *ws.Hub
	Broadcaster *ws.Broadcaster
	WSHandler   *ws.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Registry is the static credential set (required)
	Registry auth.Registry
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "redis"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	if len(cfg.Registry) == 0 {
		return nil, errors.New("Registry is required")
	}

	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeRedis
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), cfg.Registry, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, registry auth.Registry, logger *slog.Logger) *App {
	authService := auth.New(registry, store, clk, logger)
	collectionService := collection.New(store, clk, logger)
	revealService := reveal.New(store, rnd, logger)

	hub := ws.NewHub(logger)
	broadcaster := ws.NewBroadcaster(hub, store, logger)
	wsHandler := ws.NewHandler(ws.HandlerConfig{
		Hub:         hub,
		Broadcaster: broadcaster,
		AuthService: authService,
		Collections: collectionService,
		Reveal:      revealService,
		Storage:     store,
		Logger:      logger,
	})

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		AuthService:       authService,
		CollectionService: collectionService,
		RevealService:     revealService,
		Hub:               hub,
		Broadcaster:       broadcaster,
		WSHandler:         wsHandler,
	}
}
