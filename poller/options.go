package poller

import (
	"context"
	"time"

	"github.com/infigaming-com/gold-monitor/internal/backoff"
	"github.com/infigaming-com/gold-monitor/rate"
	"go.uber.org/zap"
)

// Hooks are optional callbacks invoked from the polling goroutine. They must
// not block for long. OnAccept runs after the new history has been published.
type Hooks struct {
	OnAccept  func(ctx context.Context, reading rate.Reading)
	OnFailure func(ctx context.Context, err error, retryIn time.Duration)
}

type Option func(*pollerOptions)

type pollerOptions struct {
	lg           *zap.Logger
	interval     time.Duration
	fetchTimeout time.Duration
	retry        backoff.Config
	hooks        Hooks
	metrics      MetricsHook
}

func defaultPollerOptions() *pollerOptions {
	return &pollerOptions{
		lg:           zap.L(),
		interval:     500 * time.Millisecond,
		fetchTimeout: 10 * time.Second,
		retry:        backoff.Constant(time.Second),
		metrics:      noopMetrics{},
	}
}

func WithLogger(lg *zap.Logger) Option {
	return func(o *pollerOptions) {
		if lg != nil {
			o.lg = lg
		}
	}
}

// WithInterval sets the pause after every successful poll. Default: 500ms.
func WithInterval(d time.Duration) Option {
	return func(o *pollerOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithFetchTimeout bounds a single upstream fetch. Default: 10s.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *pollerOptions) {
		if d > 0 {
			o.fetchTimeout = d
		}
	}
}

// WithRetryDelay sets a constant pause after a failed poll. Default: 1s.
func WithRetryDelay(d time.Duration) Option {
	return func(o *pollerOptions) {
		if d > 0 {
			o.retry = backoff.Constant(d)
		}
	}
}

// WithRetryBackoff replaces the constant retry delay with a growing one.
func WithRetryBackoff(cfg backoff.Config) Option {
	return func(o *pollerOptions) {
		o.retry = cfg
	}
}

func WithHooks(hooks Hooks) Option {
	return func(o *pollerOptions) {
		o.hooks = hooks
	}
}

func WithMetrics(m MetricsHook) Option {
	return func(o *pollerOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}
