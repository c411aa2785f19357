package algorithm

import (
	"context"

	"github.com/on-the-ground/physio_ive_go/cache"
	"github.com/on-the-ground/physio_ive_go/series"
)

// EnsureAttached returns the cache of s, creating it if needed.
func EnsureAttached(s *series.Series) *cache.Cache {
	return s.Cache()
}

// GetOrCompute returns the cached result of a on s, computing and storing it on a miss.
func GetOrCompute(ctx context.Context, s *series.Series, a Algorithm) (any, error) {
	return EnsureAttached(s).LoadOrCompute(CacheHash(a), func() (any, error) {
		logMiss(ctx, a, s)
		return a.Compute(ctx, s)
	})
}

// Invalidate drops the cached result of a on s and reports whether there was one.
func Invalidate(s *series.Series, a Algorithm) bool {
	if !s.HasCache() {
		return false
	}
	return s.Cache().Delete(CacheHash(a))
}

// Clear drops every cached result of s.
func Clear(s *series.Series) {
	s.ClearCache()
}
