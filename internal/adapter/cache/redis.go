package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/couchcryptid/rainfall-dry-periods/internal/adapter/jsonfile"
	"github.com/couchcryptid/rainfall-dry-periods/internal/analysis"
	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

const keyPrefix = "rainfall:records:"

// RedisSource caches the loaded history in Redis so several API replicas
// share one copy. The records are stored in the year-keyed JSON format and
// expire after ttl; a ttl of zero disables caching. When Redis is unreachable
// loads go straight to the wrapped source.
type RedisSource struct {
	inner  analysis.Source
	client *redis.Client
	ttl    time.Duration
	key    string
	logger *slog.Logger
}

// NewRedisSource creates a Redis-backed cache decorator around a source.
func NewRedisSource(inner analysis.Source, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisSource {
	return &RedisSource{
		inner:  inner,
		client: client,
		ttl:    ttl,
		key:    keyPrefix + inner.Name(),
		logger: logger,
	}
}

// Name reports the wrapped source's name.
func (r *RedisSource) Name() string { return r.inner.Name() }

// Ping checks the Redis connection.
func (r *RedisSource) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Load returns the cached records or loads and stores them.
func (r *RedisSource) Load(ctx context.Context) (domain.RecordSet, error) {
	if r.ttl <= 0 {
		return r.inner.Load(ctx)
	}

	data, err := r.client.Get(ctx, r.key).Bytes()
	switch {
	case err == nil:
		records, decodeErr := jsonfile.Decode(bytes.NewReader(data))
		if decodeErr == nil {
			return records, nil
		}
		r.logger.Warn("discarding unreadable cache entry", "key", r.key, "error", decodeErr)
	case errors.Is(err, redis.Nil):
	default:
		r.logger.Warn("redis cache unavailable", "key", r.key, "error", err)
	}

	records, err := r.inner.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.store(ctx, records); err != nil {
		r.logger.Warn("redis cache write failed", "key", r.key, "error", err)
	}
	return records, nil
}

func (r *RedisSource) store(ctx context.Context, records domain.RecordSet) error {
	var buf bytes.Buffer
	if err := jsonfile.Encode(&buf, records); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, buf.Bytes(), r.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", r.key, err)
	}
	return nil
}

// Invalidate deletes the cached records.
func (r *RedisSource) Invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		r.logger.Warn("redis cache invalidate failed", "key", r.key, "error", err)
	}
}

// Close closes the Redis client.
func (r *RedisSource) Close() error {
	return r.client.Close()
}
