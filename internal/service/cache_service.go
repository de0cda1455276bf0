package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/frenillazo/acainfo-portal-api/internal/cache"
	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
)

// CacheService fronts the redis store with hit/miss metrics. A nil receiver
// or disabled store behaves as an always-miss cache, so callers never branch
// on cache availability.
type CacheService struct {
	store   *cache.Store
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCacheService wires the store with metrics instrumentation.
func NewCacheService(store *cache.Store, metrics *MetricsService, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{store: store, metrics: metrics, logger: logger}
}

// Get loads a cached value. Returns ErrCacheMiss when absent or disabled.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	if s == nil || s.store == nil {
		return appErrors.ErrCacheMiss
	}

	start := time.Now()
	err := s.store.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))

	if err != nil && err != appErrors.ErrCacheMiss {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return appErrors.ErrCacheMiss
	}
	return err
}

// Set stores a value best-effort; failures are logged, never surfaced.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s == nil || s.store == nil {
		return
	}

	start := time.Now()
	if err := s.store.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.metrics.ObserveCacheWrite(time.Since(start))
}
