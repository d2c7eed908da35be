package hub

import (
	"time"

	"go.uber.org/zap"
)

type Option func(*registryOptions)

type registryOptions struct {
	lg           *zap.Logger
	keepAlive    time.Duration
	writeTimeout time.Duration
	metrics      MetricsHook
}

func defaultRegistryOptions() *registryOptions {
	return &registryOptions{
		lg:           zap.L(),
		keepAlive:    30 * time.Second,
		writeTimeout: 10 * time.Second,
		metrics:      noopMetrics{},
	}
}

func WithLogger(lg *zap.Logger) Option {
	return func(o *registryOptions) {
		if lg != nil {
			o.lg = lg
		}
	}
}

// WithKeepAlive sets how long a subscriber may go without any write before it
// is sent a ping. Default: 30s.
func WithKeepAlive(d time.Duration) Option {
	return func(o *registryOptions) {
		if d > 0 {
			o.keepAlive = d
		}
	}
}

// WithWriteTimeout bounds every single send. A subscriber that cannot accept
// a payload within it is evicted. Default: 10s.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *registryOptions) {
		if d > 0 {
			o.writeTimeout = d
		}
	}
}

func WithMetrics(m MetricsHook) Option {
	return func(o *registryOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}
