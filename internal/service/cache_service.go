package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Delmat237/XCCM1-BACKEND/pkg/cache"
	appErrors "github.com/Delmat237/XCCM1-BACKEND/pkg/errors"
)

const defaultCacheOperationTimeout = 200 * time.Millisecond

// CacheRepository abstracts the byte-level cache backend.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheConfig configures CacheService.
type CacheConfig struct {
	Enabled          bool
	OperationTimeout time.Duration
}

// CacheStats is a snapshot of cache activity since start-up.
type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Errors uint64 `json:"errors"`
}

// CacheService is a region-aware cache-aside store. Every backend failure is
// absorbed: reads degrade to a miss and writes to a no-op.
type CacheService struct {
	repo    CacheRepository
	codec   cache.Codec
	regions *cache.Regions
	metrics *MetricsService
	logger  *zap.Logger
	cfg     CacheConfig

	hits     uint64
	misses   uint64
	failures uint64
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, codec cache.Codec, regions *cache.Regions, metrics *MetricsService, logger *zap.Logger, cfg CacheConfig) *CacheService {
	if codec == nil {
		codec = cache.JSONCodec{}
	}
	if regions == nil {
		regions = cache.DefaultRegions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = defaultCacheOperationTimeout
	}
	return &CacheService{repo: repo, codec: codec, regions: regions, metrics: metrics, logger: logger, cfg: cfg}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.cfg.Enabled && s.repo != nil
}

// Get decodes the entry stored under region/key into dest and reports whether
// the cache was hit.
func (s *CacheService) Get(ctx context.Context, region, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	storageKey := cache.StorageKey(region, key)
	start := time.Now()
	err := s.guard(ctx, region, "get", storageKey, func(ctx context.Context) error {
		payload, err := s.repo.Get(ctx, storageKey)
		if err != nil {
			return err
		}
		if err := s.codec.Unmarshal(payload, dest); err != nil {
			return fmt.Errorf("decode %s with %s: %w", storageKey, s.codec.Name(), err)
		}
		return nil
	})
	hit := err == nil
	if hit {
		atomic.AddUint64(&s.hits, 1)
	} else {
		atomic.AddUint64(&s.misses, 1)
	}
	s.metrics.RecordCacheLookup(region, hit, time.Since(start))
	return hit
}

// Put stores value under region/key using the region TTL.
func (s *CacheService) Put(ctx context.Context, region, key string, value interface{}) {
	s.PutWithTTL(ctx, region, key, value, 0)
}

// PutWithTTL stores value with an explicit TTL. A non-positive ttl uses the
// region TTL. Nil values are skipped unless the region caches nulls.
func (s *CacheService) PutWithTTL(ctx context.Context, region, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	policy := s.regions.Policy(region)
	if isNilValue(value) && !policy.CacheNulls {
		return
	}
	if ttl <= 0 {
		ttl = policy.TTL
	}
	storageKey := cache.StorageKey(region, key)
	_ = s.guard(ctx, region, "put", storageKey, func(ctx context.Context) error {
		payload, err := s.codec.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s with %s: %w", storageKey, s.codec.Name(), err)
		}
		return s.repo.Set(ctx, storageKey, payload, ttl)
	})
}

// Evict removes the given keys from region.
func (s *CacheService) Evict(ctx context.Context, region string, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}
	storageKeys := make([]string, len(keys))
	for i, key := range keys {
		storageKeys[i] = cache.StorageKey(region, key)
	}
	_ = s.guard(ctx, region, "evict", region, func(ctx context.Context) error {
		return s.repo.Delete(ctx, storageKeys...)
	})
}

// Clear removes every entry of region.
func (s *CacheService) Clear(ctx context.Context, region string) {
	if !s.Enabled() {
		return
	}
	pattern := cache.RegionPattern(region)
	_ = s.guard(ctx, region, "clear", pattern, func(ctx context.Context) error {
		return s.repo.DeleteByPattern(ctx, pattern)
	})
}

// Stats returns counters accumulated since start-up.
func (s *CacheService) Stats() CacheStats {
	if s == nil {
		return CacheStats{}
	}
	return CacheStats{
		Hits:   atomic.LoadUint64(&s.hits),
		Misses: atomic.LoadUint64(&s.misses),
		Errors: atomic.LoadUint64(&s.failures),
	}
}

// guard runs fn under the cache timeout. Failures other than a miss are
// logged and counted; the error is returned only so callers can tell a hit
// from a miss.
func (s *CacheService) guard(ctx context.Context, region, op, target string, fn func(context.Context) error) (err error) {
	opCtx, cancel := context.WithTimeout(ctx, s.cfg.OperationTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cache %s panicked: %v", op, r)
		}
		if op != "get" {
			s.metrics.ObserveCacheOperation(region, op, time.Since(start))
		}
		if err == nil || errors.Is(err, appErrors.ErrCacheMiss) {
			return
		}
		atomic.AddUint64(&s.failures, 1)
		s.metrics.RecordCacheError(region, op)
		s.logger.Warn("cache operation failed",
			zap.String("op", op),
			zap.String("region", region),
			zap.String("key", target),
			zap.Error(err),
		)
	}()

	return fn(opCtx)
}

func isNilValue(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return v.IsNil()
	}
	return false
}
