package config

import (
	"context"

	"github.com/matzehuels/powerset/pkg/cache"
)

// OpenCache returns the cache selected by cache.backend. A file cache that
// cannot resolve its directory degrades to no caching.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendRedis:
		return cache.NewRedisCache(ctx, c.Cache.RedisAddr, "", c.Cache.RedisDB)
	case BackendFile:
		dir, err := c.CacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// Keyer returns the cache keyer, namespaced by cache.prefix when set.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}
