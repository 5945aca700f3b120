package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/neexbeast/trip-planner/internal/destination"
)

const namespace = "trip_planner"

// Metrics holds the Prometheus collectors for provider traffic and
// destination resolution. It implements destination.Observer.
type Metrics struct {
	ProviderRequests *prometheus.CounterVec   // labels: provider, outcome={ok,not_found,unauthorized,error,transport_error}
	ProviderDuration *prometheus.HistogramVec // labels: provider
	Resolutions      *prometheus.CounterVec   // labels: via={DIRECT,SEARCH_FALLBACK,NOT_FOUND}
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.ProviderRequests, m.ProviderDuration, m.Resolutions)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build
// as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Upstream provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Upstream provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "destination_resolutions_total",
			Help:      "Encyclopedia resolutions by path taken.",
		}, []string{"via"}),
	}
}

func (m *Metrics) ObserveFetch(provider, outcome string, elapsed time.Duration) {
	m.ProviderRequests.WithLabelValues(provider, outcome).Inc()
	m.ProviderDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveResolution(via destination.ResolvedVia) {
	m.Resolutions.WithLabelValues(string(via)).Inc()
}

var _ destination.Observer = (*Metrics)(nil)
