package cache

import (
	"fmt"
	"strings"

	"github.com/coocood/freecache"
	"go.uber.org/zap"
)

const (
	DriverFreeCache = "freecache"
	DriverRedis     = "redis"
)

// Open builds the cache named by driver. freeCacheSize is in bytes and only
// used by the freecache driver.
func Open(lg *zap.Logger, driver string, freeCacheSize int, redisCfg *RedisCacheConfig) (Cache, func(), error) {
	switch strings.ToLower(driver) {
	case "", DriverFreeCache:
		lg.Info("using in-process cache", zap.Int("sizeBytes", freeCacheSize))
		return NewFreeCache(freecache.NewCache(freeCacheSize)), func() {}, nil
	case DriverRedis:
		return NewRedisCache(lg, redisCfg)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
