package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SAP-F-2025/exercise-service/internal/cache"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
)

const cacheKeyPrefix = "doc:"

// CachedRepository reads through a cache for the configured path prefixes.
// Writes go to the inner repository first and then evict the cached copy.
type CachedRepository struct {
	inner    DataRepository
	cache    cache.CacheService
	ttl      time.Duration
	prefixes []string
	logger   utils.Logger
}

func NewCachedRepository(inner DataRepository, c cache.CacheService, ttl time.Duration, logger utils.Logger, prefixes ...string) *CachedRepository {
	return &CachedRepository{
		inner:    inner,
		cache:    c,
		ttl:      ttl,
		prefixes: prefixes,
		logger:   logger,
	}
}

func (r *CachedRepository) Read(ctx context.Context, path string) ([]byte, error) {
	if !r.cacheable(path) {
		return r.inner.Read(ctx, path)
	}

	key := cacheKeyPrefix + path
	var cached []byte
	err := r.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.WarnContext(ctx, "Cache read failed, falling back to store", "path", path, "error", err)
	}

	data, err := r.inner.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.WarnContext(ctx, "Cache fill failed", "path", path, "error", err)
	}
	return data, nil
}

func (r *CachedRepository) Write(ctx context.Context, path string, data []byte) error {
	if err := r.inner.Write(ctx, path, data); err != nil {
		return err
	}
	if r.cacheable(path) {
		if err := r.cache.Delete(ctx, cacheKeyPrefix+path); err != nil {
			r.logger.WarnContext(ctx, "Cache eviction failed", "path", path, "error", err)
		}
	}
	return nil
}

// Invalidate drops every cached document under prefix.
func (r *CachedRepository) Invalidate(ctx context.Context, prefix string) error {
	return r.cache.DeletePattern(ctx, cacheKeyPrefix+prefix+"*")
}

func (r *CachedRepository) cacheable(path string) bool {
	for _, p := range r.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (r *CachedRepository) Unwrap() DataRepository {
	return r.inner
}
