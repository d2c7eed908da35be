package hub

import "time"

// MetricsHook lets callers bridge registry activity to their observability
// stack without the hub depending on it.
type MetricsHook interface {
	OnSubscriberAdded()
	OnSubscriberRemoved(reason string)
	OnBroadcast(delivered, failed int, duration time.Duration)
	OnKeepAlive()
}

type noopMetrics struct{}

func (noopMetrics) OnSubscriberAdded()                  {}
func (noopMetrics) OnSubscriberRemoved(string)          {}
func (noopMetrics) OnBroadcast(int, int, time.Duration) {}
func (noopMetrics) OnKeepAlive()                        {}
