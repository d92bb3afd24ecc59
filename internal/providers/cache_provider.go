package providers

import (
	"github.com/coocood/freecache"
	"studymail/internal/structures"
	"time"
)

// CacheProviderInterface holds encoded records in memory between poll cycles.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Del(key string)
}

type CacheProvider struct {
	cache      *freecache.Cache
	ttlSeconds int
}

// recordTTL keeps an entry for one poll interval plus a second, so the next
// cycle reads from memory and an entry never survives two cycles.
func recordTTL(interval time.Duration) int {
	return max(int(interval.Seconds()), 1) + 1
}

func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Record cache disabled")
		return &noopCache{}
	}

	ttl := recordTTL(conf.Watcher.Interval)
	logger.Infof(TypeApp, "Record cache: %dMB, entries expire after %ds", conf.Cache.Size, ttl)

	return &CacheProvider{
		cache:      freecache.NewCache(conf.Cache.Size << 20),
		ttlSeconds: ttl,
	}
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *CacheProvider) Set(key string, value []byte) {
	if err := c.cache.Set([]byte(key), value, c.ttlSeconds); err != nil {
		// freecache refuses entries above 1/1024 of its size; the record
		// is then read from disk each cycle
		c.cache.Del([]byte(key))
	}
}

func (c *CacheProvider) Del(key string) {
	c.cache.Del([]byte(key))
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}
func (n *noopCache) Del(_ string)                {}
