package ws

import (
	"context"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"go.uber.org/zap"
)

// Counter names for hub delivery accounting.
const (
	metricWebsockets         = "ws.open"
	metricBroadcastDelivered = "ws.broadcast.delivered"
	metricBroadcastDropped   = "ws.broadcast.dropped"
	metricBroadcastMissed    = "ws.broadcast.missed"
	metricPushMissed         = "ws.push.missed"
	metricPushDropped        = "ws.push.dropped"
	metricInboundThrottled   = "ws.inbound.throttled"
)

var registry = gometrics.DefaultRegistry

func incr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, registry).Inc(i)
}

func decr(name string, i int64) {
	gometrics.GetOrRegisterCounter(name, registry).Dec(i)
}

// ReportMetrics periodically dumps all registered counters to the global
// logger until ctx is cancelled.
func ReportMetrics(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fields := make([]zap.Field, 0, 8)
			registry.Each(func(name string, i any) {
				if c, ok := i.(gometrics.Counter); ok {
					fields = append(fields, zap.Int64(name, c.Count()))
				}
			})
			zap.L().Info("ws_metrics", fields...)
		}
	}
}
