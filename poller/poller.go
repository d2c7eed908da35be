// Package poller runs the fetch, dedupe, append and publish loop.
package poller

import (
	"context"
	"time"

	"github.com/infigaming-com/gold-monitor/errors"
	"github.com/infigaming-com/gold-monitor/history"
	"github.com/infigaming-com/gold-monitor/internal/backoff"
	"github.com/infigaming-com/gold-monitor/rate"
	"go.uber.org/zap"
)

// Publisher receives the full history every time a new reading is accepted.
type Publisher interface {
	Publish(ctx context.Context, snapshot []rate.Reading) error
}

// Poller is the only writer of its Store. Run and Poll must not be called
// concurrently.
type Poller struct {
	lg        *zap.Logger
	opts      *pollerOptions
	provider  rate.RateProvider
	store     *history.Store
	publisher Publisher
	retry     *backoff.Exponential

	lastBuy *int64
}

func New(provider rate.RateProvider, store *history.Store, publisher Publisher, opts ...Option) *Poller {
	o := defaultPollerOptions()
	for _, opt := range opts {
		opt(o)
	}
	p := &Poller{
		lg:        o.lg,
		opts:      o,
		provider:  provider,
		store:     store,
		publisher: publisher,
		retry:     backoff.New(o.retry),
	}
	if last, ok := store.Last(); ok {
		buy := last.BuyRate
		p.lastBuy = &buy
	}
	return p
}

// Run polls until ctx is cancelled. Failures never stop the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.lg.Info("poller started",
		zap.Duration("interval", p.opts.interval),
		zap.Duration("fetchTimeout", p.opts.fetchTimeout),
	)
	defer p.lg.Info("poller stopped")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		delay := p.opts.interval
		if _, err := p.Poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			delay = p.retry.Next()
			p.lg.Warn("poll failed", zap.Error(err), zap.Duration("retryIn", delay))
			if p.opts.hooks.OnFailure != nil {
				p.opts.hooks.OnFailure(ctx, err, delay)
			}
		} else {
			p.retry.Reset()
		}
		timer.Reset(delay)
	}
}

// Poll runs one cycle and reports whether a new reading was accepted. An
// empty or already seen timestamp is not an error.
func (p *Poller) Poll(ctx context.Context) (bool, error) {
	start := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, p.opts.fetchTimeout)
	quote, err := p.provider.Latest(fetchCtx)
	cancel()
	p.opts.metrics.OnPoll(time.Since(start))

	if err != nil {
		code, _ := errors.CodeOf(err)
		p.opts.metrics.OnFeedError(code)
		return false, err
	}
	if quote == nil || quote.UpdatedAt == "" || p.store.Seen(quote.UpdatedAt) {
		p.opts.metrics.OnDuplicate()
		return false, nil
	}

	trend := rate.Classify(p.lastBuy, quote.BuyRate)
	reading := rate.NewReading(*quote, trend)
	if _, evicted := p.store.Append(reading); evicted {
		p.opts.metrics.OnEvicted()
	}
	buy := reading.BuyRate
	p.lastBuy = &buy
	p.opts.metrics.OnAccepted(trend)

	p.lg.Info("new reading accepted",
		zap.Int64("buyRate", reading.BuyRate),
		zap.Int64("sellRate", reading.SellRate),
		zap.Stringer("trend", reading.Trend),
		zap.String("updatedAt", reading.UpdatedAt),
	)

	if err := p.publisher.Publish(ctx, p.store.Snapshot()); err != nil {
		p.lg.Error("failed to publish history", zap.Error(err))
	}
	if p.opts.hooks.OnAccept != nil {
		p.opts.hooks.OnAccept(ctx, reading)
	}
	return true, nil
}
