package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the venue
// resolution core.
type Metrics struct {
	Resolutions        *prometheus.CounterVec // labels: provider (winning provider or "gps")
	ResolutionDuration prometheus.Histogram
	VenueCache         *prometheus.CounterVec // labels: result={hit,miss}
	CoalescedCalls     prometheus.Counter

	// Provider call metrics.
	ProviderRequests *prometheus.CounterVec   // labels: provider, outcome={success,error,empty,not_modified}
	ProviderCache    *prometheus.CounterVec   // labels: provider, result={hit,miss}
	ProviderDuration *prometheus.HistogramVec // labels: provider
	RateLimitWait    *prometheus.HistogramVec // labels: provider
	ProvidersEnabled prometheus.Gauge

	SinkPublished prometheus.Counter
	SinkErrors    prometheus.Counter
}

// NewMetrics creates and registers all resolution metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Resolutions,
		m.ResolutionDuration,
		m.VenueCache,
		m.CoalescedCalls,
		m.ProviderRequests,
		m.ProviderCache,
		m.ProviderDuration,
		m.RateLimitWait,
		m.ProvidersEnabled,
		m.SinkPublished,
		m.SinkErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venue_resolution",
			Name:      "resolutions_total",
			Help:      "Completed venue resolutions by winning provider (gps = fallback).",
		}, []string{"provider"}),
		ResolutionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "venue_resolution",
			Name:      "resolution_duration_seconds",
			Help:      "End-to-end duration of a venue resolution.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		VenueCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venue_resolution",
			Name:      "venue_cache_total",
			Help:      "Resolver-level cache lookups by result.",
		}, []string{"result"}),
		CoalescedCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "venue_resolution",
			Name:      "coalesced_calls_total",
			Help:      "Calls that shared an in-flight fetch instead of starting one.",
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venue_resolution",
			Name:      "provider_requests_total",
			Help:      "Provider API requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "venue_resolution",
			Name:      "provider_cache_total",
			Help:      "Provider-level cache lookups by provider and result.",
		}, []string{"provider", "result"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "venue_resolution",
			Name:      "provider_request_duration_seconds",
			Help:      "Provider API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		RateLimitWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "venue_resolution",
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for a rate-limiter token.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"provider"}),
		ProvidersEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "venue_resolution",
			Name:      "providers_enabled",
			Help:      "Number of provider adapters configured at startup.",
		}),
		SinkPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "venue_resolution",
			Name:      "sink_published_total",
			Help:      "Resolved venues published to the event sink.",
		}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "venue_resolution",
			Name:      "sink_errors_total",
			Help:      "Failed event sink publishes.",
		}),
	}
}
