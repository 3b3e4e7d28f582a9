package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/trialscope/pkg/common/logger"
)

const keyPrefix = "preferences:"

type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore stores each session as a JSON string that expires after ttl.
// A zero ttl keeps entries forever.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(session string) string {
	return keyPrefix + session
}

func (r *RedisStore) Get(ctx context.Context, session string) (Preferences, error) {
	if session == "" {
		return Preferences{}, ErrInvalidSession
	}
	raw, err := r.client.Get(ctx, key(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Default(), nil
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to read preferences: %w", err)
	}
	var prefs Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		logger.Log.WithError(err).WithField("session", session).Warn("Discarding unreadable preferences")
		return Default(), nil
	}
	return prefs, nil
}

func (r *RedisStore) Save(ctx context.Context, session string, prefs Preferences) error {
	if session == "" {
		return ErrInvalidSession
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key(session), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
