package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/trialscope/pkg/common/config"
	"github.com/synaptica-ai/trialscope/pkg/common/logger"
)

// redisClientName tags dashboard connections in CLIENT LIST.
const redisClientName = "trialscope-dashboard"

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

func redisOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		ClientName:   redisClientName,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}
}

// GetRedis returns the client backing the preference store. An unreachable
// server only logs a warning: preference reads then fail per request and the
// dashboard keeps serving datasets.
func GetRedis(cfg *config.Config) *redis.Client {
	redisOnce.Do(func() {
		opts := redisOptions(cfg)
		redisClient = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
		defer cancel()

		entry := logger.WithFields(map[string]interface{}{
			"addr": opts.Addr,
			"db":   opts.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			entry.WithError(err).Warn("Preference store Redis unreachable")
		} else {
			entry.Info("Connected to preference store Redis")
		}
	})

	return redisClient
}

func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
