package cache

import (
	"context"
	"time"

	"github.com/infigaming-com/gold-monitor/rate"
)

const DefaultLatestReadingKey = "gold-monitor:latest"

// LatestReading keeps the most recently accepted reading so it can be served
// without touching the history window.
type LatestReading struct {
	cache Cache
	key   string
	ttl   time.Duration
}

func NewLatestReading(cache Cache, key string, ttl time.Duration) *LatestReading {
	if key == "" {
		key = DefaultLatestReadingKey
	}
	return &LatestReading{cache: cache, key: key, ttl: ttl}
}

func (l *LatestReading) Put(ctx context.Context, reading rate.Reading) error {
	return SetTyped(ctx, l.cache, l.key, reading, l.ttl)
}

// Get returns ErrKeyNotFound until the first Put.
func (l *LatestReading) Get(ctx context.Context) (rate.Reading, error) {
	return GetTyped[rate.Reading](ctx, l.cache, l.key)
}
