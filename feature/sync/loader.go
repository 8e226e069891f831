package sync

import (
	"time"

	"douban2feishu/core/cache"
	"douban2feishu/core/config"
	"douban2feishu/core/feishu"
	"douban2feishu/feature/sync/executor"
	"douban2feishu/feature/sync/history"
	"douban2feishu/feature/sync/mapping"
	"douban2feishu/feature/sync/state"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature wires the sync feature from its infrastructure pieces.
func NewFeature(client feishu.Client, db *gorm.DB, cacheStore cache.Store, cfg config.SyncConfig, logger *zap.Logger) (*Feature, error) {
	mappingStore := mapping.NewStore(db)
	if err := mappingStore.Migrate(); err != nil {
		return nil, err
	}
	runStore := history.NewStore(db)
	if err := runStore.Migrate(); err != nil {
		return nil, err
	}

	resolver := mapping.NewResolver(client, mappingStore, cacheStore,
		time.Duration(cfg.MappingTTLMinutes)*time.Minute, logger)
	applier := executor.NewExecutor(client, cfg.WriteBatchSize, cfg.Concurrency, logger)
	tracker := state.NewTracker(cacheStore, time.Duration(cfg.StateTTLSeconds)*time.Second, logger)

	svc := NewService(client, resolver, applier, tracker, runStore, cfg, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}, nil
}

// Service exposes the wired service for command-line use.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sync"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
