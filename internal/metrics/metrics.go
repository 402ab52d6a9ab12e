package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the SkyTracker backend
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Upstream Metrics
	UpstreamRequestsTotal prometheus.CounterVec
	RefreshDuration       prometheus.HistogramVec

	// Cache Metrics
	CachedFlights   prometheus.Gauge
	CachedPositions prometheus.Gauge

	// WebSocket Metrics
	WebsocketClients prometheus.Gauge
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skytracker_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skytracker_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "skytracker_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		UpstreamRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skytracker_upstream_requests_total",
				Help: "Total upstream API refresh attempts by feed and outcome",
			},
			[]string{"feed", "outcome"},
		),
		RefreshDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "skytracker_refresh_duration_seconds",
				Help:    "Ingestion refresh latency distribution in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
			},
			[]string{"feed"},
		),

		CachedFlights: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "skytracker_cached_flights",
				Help: "Number of flights currently held in the in-memory cache",
			},
		),
		CachedPositions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "skytracker_cached_positions",
				Help: "Number of aircraft positions currently held in the in-memory cache",
			},
		),

		WebsocketClients: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "skytracker_websocket_clients",
				Help: "Connected live-position websocket clients",
			},
		),
	}
}
