package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Dispatch metrics
	TrackedVehiclesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_tracked_vehicles",
			Help: "Vehicles currently held by the tracking registry",
		},
	)

	EvictedTrackingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_tracking_evictions_total",
			Help: "Tracking records removed by the staleness sweep",
		},
	)

	RideTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_ride_transitions_total",
			Help: "Ride request transitions by target status and outcome",
		},
		[]string{"status", "outcome"},
	)

	WalletDebitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_wallet_debits_total",
			Help: "Wallet debit attempts by outcome",
		},
		[]string{"outcome"},
	)

	PeakFlipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_peak_hour_flips_total",
			Help: "Peak hour activation changes per location",
		},
		[]string{"location", "peak"},
	)

	WebSocketConnectionsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of active WebSocket connections",
		},
	)

	FanoutEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_fanout_events_total",
			Help: "Events delivered by the fan-out bus",
		},
		[]string{"event", "scope"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"exchange", "status"},
	)

	RabbitMQMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_consumed_total",
			Help: "Total number of messages consumed from RabbitMQ",
		},
		[]string{"exchange", "status"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	code := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, code).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, code).Observe(duration.Seconds())
}

func RecordTransition(to string, err error) {
	RideTransitionsTotal.WithLabelValues(to, status(err)).Inc()
}

func RecordDebit(err error) {
	WalletDebitsTotal.WithLabelValues(status(err)).Inc()
}

func RecordRabbitMQPublish(exchange string, err error) {
	RabbitMQMessagesPublished.WithLabelValues(exchange, status(err)).Inc()
}

func RecordRabbitMQConsume(exchange string, err error) {
	RabbitMQMessagesConsumed.WithLabelValues(exchange, status(err)).Inc()
}
