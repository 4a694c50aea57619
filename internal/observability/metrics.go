// Package observability provides domain metrics, tracing and websocket logging.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// BroadcastEvents counts fan-out events by type.
	BroadcastEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "navega_broadcast_events_total",
		Help: "Total fan-out events broadcast to connected clients",
	}, []string{"event"})

	// ReactionToggles counts identify toggles by target and resulting action.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "navega_reaction_toggles_total",
		Help: "Total identify toggles by target kind and action",
	}, []string{"target", "action"})

	// ReportQueryLatency records how long each reporting query takes.
	ReportQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "navega_report_query_seconds",
		Help:    "Latency of reporting queries in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
)

// TrackReport returns a function that records the latency of report when called.
func TrackReport(report string) func() {
	start := time.Now()
	return func() {
		ReportQueryLatency.WithLabelValues(report).Observe(time.Since(start).Seconds())
	}
}
