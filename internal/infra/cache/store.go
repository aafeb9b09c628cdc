// Package cache provides the TTL-aware cache store that wraps the
// catalog pipeline, with interchangeable in-process, Redis and
// PostgreSQL backends behind one interface.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"catalog-metadata-service/internal/domain"
)

// Sweeper is implemented by backends whose expired entries must be
// removed explicitly rather than lapsing on their own.
type Sweeper interface {
	// CleanupExpired deletes at most limit expired entries (limit <= 0
	// applies the backend default) and returns how many were removed.
	CleanupExpired(ctx context.Context, limit int) (int64, error)
}

// Store wraps a backend driver with get-or-compute-then-set semantics.
// A Store with a nil backend (caching disabled or unconfigured) is
// behaviorally transparent: Wrap calls compute directly.
type Store struct {
	backend domain.Cache
	logger  *zap.Logger
	group   singleflight.Group
}

// NewStore creates a Store over the given backend. backend may be nil.
func NewStore(backend domain.Cache, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
	}
}

// Enabled reports whether a backend is configured.
func (s *Store) Enabled() bool {
	return s != nil && s.backend != nil
}

// Delete removes one entry. No-op when caching is disabled.
func (s *Store) Delete(ctx context.Context, key string) error {
	if !s.Enabled() {
		return nil
	}
	return s.backend.Delete(ctx, key)
}

// Clear removes all entries. No-op when caching is disabled.
func (s *Store) Clear(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.backend.Clear(ctx)
}

// Wrap returns the cached value under key if present and unexpired,
// otherwise invokes compute, stores the result with ttl, and returns it.
// At most one cache write is externally observable per call. Concurrent
// callers for the same key are coalesced onto a single in-flight compute
// (single-flight); this is an optimization on top of the contract, which
// still tolerates duplicate computes.
//
// Backend failures never turn into pipeline failures: a failed read is a
// miss, a failed write is dropped, and compute's own error propagates
// unchanged.
func Wrap[T any](ctx context.Context, s *Store, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	var zero T
	if !s.Enabled() {
		return compute()
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		if data, err := s.backend.Get(ctx, key); err != nil {
			s.logger.Warn("cache read failed, treating as miss",
				zap.String("key", key),
				zap.Error(err),
			)
		} else if data != nil {
			var value T
			if err := json.Unmarshal(data, &value); err != nil {
				s.logger.Warn("cache entry undecodable, treating as miss",
					zap.String("key", key),
					zap.Error(err),
				)
			} else {
				return value, nil
			}
		}

		value, err := compute()
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(value); err != nil {
			s.logger.Warn("cache value unencodable, skipping write",
				zap.String("key", key),
				zap.Error(err),
			)
		} else if err := s.backend.Set(ctx, key, data, ttl); err != nil {
			s.logger.Warn("cache write failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}

		return value, nil
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}
