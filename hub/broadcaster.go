package hub

import (
	"context"
	"fmt"

	"github.com/infigaming-com/gold-monitor/rate"
	"go.uber.org/zap"
)

// Broadcaster turns history snapshots into wire payloads for a Registry.
type Broadcaster struct {
	lg       *zap.Logger
	registry *Registry
}

func NewBroadcaster(lg *zap.Logger, registry *Registry) *Broadcaster {
	return &Broadcaster{lg: lg, registry: registry}
}

// Publish sends snapshot to every subscriber. Delivery failures are handled
// by the registry; only an encoding failure is returned.
func (b *Broadcaster) Publish(ctx context.Context, snapshot []rate.Reading) error {
	payload, err := EncodeHistory(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	delivered := b.registry.Broadcast(ctx, payload)
	b.lg.Debug("history broadcast",
		zap.Int("readings", len(snapshot)),
		zap.Int("delivered", delivered),
	)
	return nil
}
