package app

import (
	"context"
	"fmt"

	"github.com/kapu/contentful-constructor-go/internal/cache"
	"github.com/kapu/contentful-constructor-go/internal/config"
	"github.com/kapu/contentful-constructor-go/internal/constructor"
	"github.com/kapu/contentful-constructor-go/internal/contentful"
	"github.com/kapu/contentful-constructor-go/internal/indexer"
	"github.com/kapu/contentful-constructor-go/internal/store"
	"go.uber.org/zap"
)

// Container bundles the assembled services. Heavy-weight initialization
// (cache, history store, HTTP clients) happens in Build so the orchestrator
// stays focused on pipeline logic.
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Registry     *indexer.Registry
	Orchestrator *Orchestrator
	Cache        *cache.Service
	Runs         *store.RunRepository

	closers []func()
}

// Close releases held resources in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles the service graph. Redis and Postgres are optional; skipped
// when unconfigured. progress may be nil.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, progress ProgressPublisher) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	cmsClient := contentful.NewClient(
		cfg.Contentful.SpaceID,
		cfg.Contentful.EnvironmentID,
		cfg.Contentful.DeliveryToken,
		logger,
	)
	registry := indexer.NewRegistry(cmsClient)
	uploader := constructor.NewClient(logger)

	var cacheSvc *cache.Service
	if cfg.RedisEnabled() {
		cacheSvc, err = cache.NewService(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", err)
		}
		closers = append(closers, func() {
			_ = cacheSvc.Close()
		})
	}

	var runs *store.RunRepository
	if cfg.PostgresEnabled() {
		var pg *store.PostgresService
		pg, err = store.NewPostgresService(store.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create run store: %w", err)
		}
		closers = append(closers, func() {
			_ = pg.Close()
		})

		runs = store.NewRunRepository(pg, logger)
		if err = runs.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize run store: %w", err)
		}
	}

	orchestrator, err := NewOrchestrator(&Dependencies{
		Registry:    registry,
		Uploader:    uploader,
		Credentials: cfg.Constructor,
		Indexing:    cfg.Indexing,
		Cache:       cacheSvc,
		Runs:        runs,
		Progress:    progress,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Registry:     registry,
		Orchestrator: orchestrator,
		Cache:        cacheSvc,
		Runs:         runs,
		closers:      closers,
	}, nil
}
