// Package hub fans accepted readings out to live subscribers.
package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/infigaming-com/gold-monitor/errors"
	"github.com/infigaming-com/gold-monitor/rate"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Subscriber is one live viewer session. Send must honour ctx's deadline.
// Close must be safe to call more than once.
type Subscriber interface {
	ID() string
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// SnapshotFunc returns the current history window, oldest first.
type SnapshotFunc func() []rate.Reading

const (
	reasonUnregistered = "unregistered"
	reasonSendFailed   = "send_failed"
	reasonPingFailed   = "keepalive_failed"
	reasonShutdown     = "shutdown"
)

// Registry is the set of connected subscribers. Writes to a single subscriber
// are serialised, so each subscriber sees payloads in the order they were
// produced. A failing subscriber never affects delivery to the others.
type Registry struct {
	lg       *zap.Logger
	opts     *registryOptions
	snapshot SnapshotFunc

	mu      sync.Mutex
	members map[string]*member
	closed  bool
}

type member struct {
	sub Subscriber

	mu       sync.Mutex
	lastSent time.Time
	done     chan struct{}
	stopOnce sync.Once
}

func NewRegistry(snapshot SnapshotFunc, opts ...Option) *Registry {
	o := defaultRegistryOptions()
	for _, opt := range opts {
		opt(o)
	}
	if snapshot == nil {
		snapshot = func() []rate.Reading { return nil }
	}
	return &Registry{
		lg:       o.lg,
		opts:     o,
		snapshot: snapshot,
		members:  make(map[string]*member),
	}
}

// Register adds sub and sends it the current history. Any broadcast racing
// with the registration reaches sub after the history, never before.
// If the history cannot be delivered, sub is dropped and the error returned.
func (r *Registry) Register(ctx context.Context, sub Subscriber) error {
	m := &member{sub: sub, done: make(chan struct{})}

	m.mu.Lock()
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		m.mu.Unlock()
		return ErrRegistryClosed
	}
	if _, exists := r.members[sub.ID()]; exists {
		r.mu.Unlock()
		m.mu.Unlock()
		return errors.NewError(ErrCodeDuplicateSubscriber, fmt.Sprintf("subscriber %s already registered", sub.ID()), nil)
	}
	r.members[sub.ID()] = m
	total := len(r.members)
	r.mu.Unlock()
	r.opts.metrics.OnSubscriberAdded()

	payload, err := EncodeHistory(r.snapshot())
	if err != nil {
		err = errors.NewError(ErrCodeSnapshotEncode, "failed to encode history", err)
	} else {
		err = r.writeLocked(ctx, m, payload)
	}
	m.mu.Unlock()

	if err != nil {
		r.remove(m, reasonSendFailed, err)
		return err
	}

	r.lg.Debug("subscriber registered", zap.String("subscriber", sub.ID()), zap.Int("subscribers", total))
	go r.keepAlive(m)
	return nil
}

// Unregister removes sub and closes it. Unknown or already removed
// subscribers are ignored.
func (r *Registry) Unregister(sub Subscriber) {
	r.mu.Lock()
	m, ok := r.members[sub.ID()]
	r.mu.Unlock()
	if !ok || m.sub != sub {
		return
	}
	r.remove(m, reasonUnregistered, nil)
}

// Broadcast delivers payload to every subscriber registered when the call
// starts. Deliveries run concurrently; subscribers that fail are removed once
// the whole pass has finished. It returns the number of successful deliveries.
func (r *Registry) Broadcast(ctx context.Context, payload []byte) int {
	start := time.Now()

	r.mu.Lock()
	targets := lo.Values(r.members)
	r.mu.Unlock()

	type failure struct {
		m   *member
		err error
	}
	var (
		wg       sync.WaitGroup
		failedMu sync.Mutex
		failed   []failure
	)
	for _, m := range targets {
		wg.Add(1)
		go func(m *member) {
			defer wg.Done()
			if err := r.send(ctx, m, payload); err != nil {
				failedMu.Lock()
				failed = append(failed, failure{m: m, err: err})
				failedMu.Unlock()
			}
		}(m)
	}
	wg.Wait()

	for _, f := range failed {
		r.remove(f.m, reasonSendFailed, f.err)
	}

	delivered := len(targets) - len(failed)
	r.opts.metrics.OnBroadcast(delivered, len(failed), time.Since(start))
	return delivered
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (r *Registry) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo.Keys(r.members)
}

// Close removes and closes every subscriber. Later registrations fail with
// ErrRegistryClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	members := lo.Values(r.members)
	r.mu.Unlock()

	for _, m := range members {
		r.remove(m, reasonShutdown, nil)
	}
}

func (r *Registry) send(ctx context.Context, m *member, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return r.writeLocked(ctx, m, payload)
}

// writeLocked expects m.mu to be held.
func (r *Registry) writeLocked(ctx context.Context, m *member, payload []byte) error {
	select {
	case <-m.done:
		return ErrSubscriberClosed
	default:
	}

	sendCtx, cancel := context.WithTimeout(ctx, r.opts.writeTimeout)
	defer cancel()
	if err := m.sub.Send(sendCtx, payload); err != nil {
		return err
	}
	m.lastSent = time.Now()
	return nil
}

func (r *Registry) remove(m *member, reason string, cause error) {
	r.mu.Lock()
	current, ok := r.members[m.sub.ID()]
	if ok && current == m {
		delete(r.members, m.sub.ID())
	}
	r.mu.Unlock()
	if !ok || current != m {
		return
	}

	m.stopOnce.Do(func() { close(m.done) })
	if err := m.sub.Close(); err != nil {
		r.lg.Debug("failed to close subscriber", zap.String("subscriber", m.sub.ID()), zap.Error(err))
	}
	r.opts.metrics.OnSubscriberRemoved(reason)
	r.lg.Debug("subscriber removed",
		zap.String("subscriber", m.sub.ID()),
		zap.String("reason", reason),
		zap.NamedError("cause", cause),
	)
}

// keepAlive pings m whenever it has been idle for the keep-alive interval.
func (r *Registry) keepAlive(m *member) {
	interval := r.opts.keepAlive
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-timer.C:
		}

		m.mu.Lock()
		idle := time.Since(m.lastSent)
		if idle < interval {
			m.mu.Unlock()
			timer.Reset(interval - idle)
			continue
		}
		err := r.writeLocked(context.Background(), m, EncodePing())
		m.mu.Unlock()

		if err != nil {
			r.remove(m, reasonPingFailed, err)
			return
		}
		r.opts.metrics.OnKeepAlive()
		timer.Reset(interval)
	}
}
