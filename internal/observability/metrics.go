package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the bridge.
type Metrics struct {
	ConversionsTotal *prometheus.CounterVec // labels: flow={latest,timeseries}, outcome={success,error}
	EntitiesBuilt    *prometheus.CounterVec // labels: entity={thing,location,datastream,observation}

	// Upstream Smart Urban Heat Map API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: endpoint={latest,timeseries}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: endpoint={latest,timeseries}

	// Kafka observation publishing metrics.
	ObservationsPublished prometheus.Counter
	PublishErrors         prometheus.Counter
	PublishEnabled        prometheus.Gauge
}

// NewMetrics creates and registers all bridge metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ConversionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suhm_bridge",
			Name:      "conversions_total",
			Help:      "SensorThings conversions by flow and outcome.",
		}, []string{"flow", "outcome"}),
		EntitiesBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suhm_bridge",
			Name:      "entities_built_total",
			Help:      "SensorThings entities emitted by type.",
		}, []string{"entity"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "suhm_bridge",
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "suhm_bridge",
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "suhm_bridge",
			Name:      "observations_published_total",
			Help:      "Observations written to the Kafka sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "suhm_bridge",
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publish attempts.",
		}),
		PublishEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "suhm_bridge",
			Name:      "publish_enabled",
			Help:      "1 when Kafka observation publishing is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.ConversionsTotal,
		m.EntitiesBuilt,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.ObservationsPublished,
		m.PublishErrors,
		m.PublishEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ConversionsTotal:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "suhm_bridge", Name: "conversions_total"}, []string{"flow", "outcome"}),
		EntitiesBuilt:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "suhm_bridge", Name: "entities_built_total"}, []string{"entity"}),
		UpstreamRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "suhm_bridge", Name: "upstream_requests_total"}, []string{"endpoint", "outcome"}),
		UpstreamDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "suhm_bridge", Name: "upstream_request_duration_seconds"}, []string{"endpoint"}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "suhm_bridge", Name: "observations_published_total"}),
		PublishErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "suhm_bridge", Name: "publish_errors_total"}),
		PublishEnabled:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "suhm_bridge", Name: "publish_enabled"}),
	}
}
