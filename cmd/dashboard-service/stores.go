package main

import (
	"context"
	"fmt"

	"github.com/synaptica-ai/trialscope/pkg/common/config"
	"github.com/synaptica-ai/trialscope/pkg/common/database"
	"github.com/synaptica-ai/trialscope/pkg/common/logger"
	"github.com/synaptica-ai/trialscope/pkg/layout"
	"github.com/synaptica-ai/trialscope/pkg/preferences"
)

func newLayoutService(ctx context.Context, cfg *config.Config) (*layout.Service, error) {
	seeds, err := layout.LoadDefaults(cfg.LayoutDefaultsPath)
	if err != nil {
		return nil, err
	}

	var repo layout.Repository
	switch cfg.LayoutStore {
	case "memory", "":
		repo = layout.NewMemoryRepository()
	case "postgres":
		db, err := database.GetPostgres(cfg)
		if err != nil {
			return nil, err
		}
		gormRepo := layout.NewGormRepository(db)
		if err := gormRepo.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate layouts: %w", err)
		}
		repo = gormRepo
	default:
		return nil, fmt.Errorf("unsupported layout store %q", cfg.LayoutStore)
	}

	logger.Log.WithFields(map[string]interface{}{
		"store": cfg.LayoutStore,
		"seeds": len(seeds),
	}).Info("Layout store ready")
	return layout.NewService(ctx, repo, seeds)
}

func newPreferenceStore(cfg *config.Config) preferences.Store {
	if cfg.PreferencesStore == "redis" {
		logger.Log.WithField("ttl", cfg.PreferencesTTL.String()).Info("Using Redis preference store")
		return preferences.NewRedisStore(database.GetRedis(cfg), cfg.PreferencesTTL)
	}
	return preferences.NewMemoryStore()
}
