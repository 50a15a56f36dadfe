package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"adminhub/internal/middleware"
	"adminhub/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON loads key into dest. It reports false when the key is absent or
// no Redis client is configured.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v under key with ttl.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside reads key into dest, calling fetch to populate dest on a miss and
// storing the result with ttl. Redis failures degrade to calling fetch.
func Aside(ctx context.Context, namespace, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		observability.RecordCacheLookup(namespace, true)
		return nil
	}
	observability.RecordCacheLookup(namespace, false)

	if err := fetch(); err != nil {
		return err
	}

	if err := SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}
