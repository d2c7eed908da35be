package poller

import (
	"time"

	"github.com/infigaming-com/gold-monitor/rate"
)

// MetricsHook lets callers bridge poller activity to their observability
// stack.
type MetricsHook interface {
	OnPoll(duration time.Duration)
	OnAccepted(trend rate.Trend)
	OnDuplicate()
	OnFeedError(code int64)
	OnEvicted()
}

type noopMetrics struct{}

func (noopMetrics) OnPoll(time.Duration)  {}
func (noopMetrics) OnAccepted(rate.Trend) {}
func (noopMetrics) OnDuplicate()          {}
func (noopMetrics) OnFeedError(int64)     {}
func (noopMetrics) OnEvicted()            {}
