// Package cache keeps a loaded measurement history in memory for a short time
// so repeated requests do not re-read the underlying source.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/rainfall-dry-periods/internal/analysis"
	"github.com/couchcryptid/rainfall-dry-periods/internal/domain"
)

// CachedSource wraps a Source with a time-based cache. Callers share the
// cached RecordSet and must not modify it.
type CachedSource struct {
	inner analysis.Source
	ttl   time.Duration
	clock clockwork.Clock

	mu       sync.Mutex
	records  domain.RecordSet
	loadedAt time.Time
}

// NewCachedSource creates a cache decorator around a source. A non-positive
// ttl disables caching.
func NewCachedSource(inner analysis.Source, ttl time.Duration, clock clockwork.Clock) *CachedSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedSource{inner: inner, ttl: ttl, clock: clock}
}

// Name reports the wrapped source's name.
func (c *CachedSource) Name() string { return c.inner.Name() }

// Load returns the cached records while they are fresh and reloads otherwise.
// Concurrent callers wait for a single reload.
func (c *CachedSource) Load(ctx context.Context) (domain.RecordSet, error) {
	if c.ttl <= 0 {
		return c.inner.Load(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.records != nil && c.clock.Since(c.loadedAt) < c.ttl {
		return c.records, nil
	}
	records, err := c.inner.Load(ctx)
	if err != nil {
		// Failed loads are not cached so the next call retries.
		return nil, err
	}
	c.records = records
	c.loadedAt = c.clock.Now()
	return records, nil
}

// Invalidate drops the cached records.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
}
