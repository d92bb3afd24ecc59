package providers

import (
	"strings"
	"studymail/internal/structures"
)

// RecordCacheKey is the cache key a stored record is kept under.
func RecordCacheKey(record string) string {
	return recordKeyPrefix + record
}

const recordKeyPrefix = "record:"

// MetricsCacheProvider counts lookups per record. Keys outside the record
// namespace are counted under "other".
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func cacheRecordLabel(key string) string {
	if name, ok := strings.CutPrefix(key, recordKeyPrefix); ok && name != "" {
		return name
	}
	return "other"
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	c.metrics.IncCacheLookup(cacheRecordLabel(key), ok)
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *MetricsCacheProvider) Del(key string) {
	c.inner.Del(key)
}

// NewInstrumentedCacheProvider wraps the record cache with lookup counters.
// A disabled cache is returned bare so it does not report a miss per read.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
