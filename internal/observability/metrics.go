package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomloop_http_requests_total",
			Help: "Total number of HTTP requests processed by the roomloop service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roomloop_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomloop_ws_active_connections",
			Help: "Number of authenticated socket connections.",
		},
	)
	wsActiveChannels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "roomloop_ws_active_channels",
			Help: "Number of room channels with at least one member.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomloop_ws_events_total",
			Help: "Total number of socket events handled, by event name.",
		},
		[]string{"event"},
	)
	relayDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomloop_relay_deliveries_total",
			Help: "Outbound events enqueued to connections, by event name.",
		},
		[]string{"event"},
	)
	relayFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomloop_relay_failures_total",
			Help: "Outbound events that could not be delivered, by event name.",
		},
		[]string{"event"},
	)
	handshakeRejectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomloop_ws_handshake_rejects_total",
			Help: "Socket handshakes rejected by the auth verifier.",
		},
		[]string{"reason"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "roomloop_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsActiveChannels,
		wsEventsTotal,
		relayDeliveriesTotal,
		relayFailuresTotal,
		handshakeRejectsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func SetWSActive(connections, channels int) {
	wsActiveConnections.Set(float64(connections))
	wsActiveChannels.Set(float64(channels))
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func IncRelayDelivery(event string) {
	relayDeliveriesTotal.WithLabelValues(event).Inc()
}

func IncRelayFailure(event string) {
	relayFailuresTotal.WithLabelValues(event).Inc()
}

func IncHandshakeReject(reason string) {
	handshakeRejectsTotal.WithLabelValues(reason).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
