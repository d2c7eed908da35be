package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/infigaming-com/gold-monitor/rate"
	"go.uber.org/zap"
)

const (
	MetricPolls               = "gold_monitor.polls"
	MetricPollDuration        = "gold_monitor.poll.duration"
	MetricReadingsAccepted    = "gold_monitor.readings.accepted"
	MetricReadingsDuplicate   = "gold_monitor.readings.duplicate"
	MetricFeedErrors          = "gold_monitor.feed.errors"
	MetricHistoryEvictions    = "gold_monitor.history.evictions"
	MetricSubscribers         = "gold_monitor.subscribers"
	MetricSubscribersRemoved  = "gold_monitor.subscribers.removed"
	MetricBroadcastDeliveries = "gold_monitor.broadcast.deliveries"
	MetricBroadcastDuration   = "gold_monitor.broadcast.duration"
	MetricKeepAlives          = "gold_monitor.keepalives"
)

// Recorder turns poller and hub events into otel instruments. It satisfies
// both poller.MetricsHook and hub.MetricsHook.
type Recorder struct {
	lg       *zap.Logger
	exporter *MetricExporter
}

func NewRecorder(lg *zap.Logger, exporter *MetricExporter) *Recorder {
	return &Recorder{lg: lg, exporter: exporter}
}

func (r *Recorder) OnPoll(duration time.Duration) {
	r.check(r.exporter.RecordCounter(context.Background(), MetricPolls, "upstream polls", "1", 1, nil))
	r.check(r.exporter.RecordHistogram(context.Background(), MetricPollDuration, "upstream poll latency", "ms",
		float64(duration.Microseconds())/1000, nil))
}

func (r *Recorder) OnAccepted(trend rate.Trend) {
	r.check(r.exporter.RecordCounter(context.Background(), MetricReadingsAccepted, "new readings accepted", "1", 1,
		map[string]string{"trend": trend.String()}))
}

func (r *Recorder) OnDuplicate() {
	r.check(r.exporter.RecordCounter(context.Background(), MetricReadingsDuplicate, "polls without new data", "1", 1, nil))
}

func (r *Recorder) OnFeedError(code int64) {
	r.check(r.exporter.RecordCounter(context.Background(), MetricFeedErrors, "failed upstream polls", "1", 1,
		map[string]string{"code": strconv.FormatInt(code, 10)}))
}

func (r *Recorder) OnEvicted() {
	r.check(r.exporter.RecordCounter(context.Background(), MetricHistoryEvictions, "readings evicted from history", "1", 1, nil))
}

func (r *Recorder) OnSubscriberAdded() {
	r.check(r.exporter.RecordUpDown(context.Background(), MetricSubscribers, "connected subscribers", "1", 1, nil))
}

func (r *Recorder) OnSubscriberRemoved(reason string) {
	r.check(r.exporter.RecordUpDown(context.Background(), MetricSubscribers, "connected subscribers", "1", -1, nil))
	r.check(r.exporter.RecordCounter(context.Background(), MetricSubscribersRemoved, "subscribers removed", "1", 1,
		map[string]string{"reason": reason}))
}

func (r *Recorder) OnBroadcast(delivered, failed int, duration time.Duration) {
	if delivered > 0 {
		r.check(r.exporter.RecordCounter(context.Background(), MetricBroadcastDeliveries, "broadcast deliveries", "1",
			int64(delivered), map[string]string{"result": "ok"}))
	}
	if failed > 0 {
		r.check(r.exporter.RecordCounter(context.Background(), MetricBroadcastDeliveries, "broadcast deliveries", "1",
			int64(failed), map[string]string{"result": "failed"}))
	}
	r.check(r.exporter.RecordHistogram(context.Background(), MetricBroadcastDuration, "broadcast fan-out latency", "ms",
		float64(duration.Microseconds())/1000, nil))
}

func (r *Recorder) OnKeepAlive() {
	r.check(r.exporter.RecordCounter(context.Background(), MetricKeepAlives, "keep-alive pings sent", "1", 1, nil))
}

func (r *Recorder) check(err error) {
	if err != nil {
		r.lg.Debug("failed to record metric", zap.Error(err))
	}
}
