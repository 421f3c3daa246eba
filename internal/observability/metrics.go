package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "travel_assistant"

// Metrics holds the Prometheus counters, histograms, and gauges for the assistant.
type Metrics struct {
	Turns          *prometheus.CounterVec // labels: outcome={completed,rolled_back}
	AugmentedTurns prometheus.Counter
	TurnDuration   prometheus.Histogram
	ActiveSessions prometheus.Gauge

	// Weather enrichment metrics.
	WeatherCache       *prometheus.CounterVec   // labels: result={hit,miss}
	WeatherFetches     *prometheus.CounterVec   // labels: outcome={found,not_found,failed}
	WeatherAPIDuration *prometheus.HistogramVec // labels: endpoint={geocode,forecast}

	// Language model metrics.
	LLMDuration *prometheus.HistogramVec // labels: provider

	// Turn event publishing.
	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

func newMetrics() *Metrics {
	return &Metrics{
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Chat turns by terminal outcome.",
		}, []string{"outcome"}),
		AugmentedTurns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "augmented_turns_total",
			Help:      "Turns whose outgoing message carried live weather data.",
		}),
		TurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "End-to-end duration of a chat turn.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Conversation sessions currently held in memory.",
		}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_fetches_total",
			Help:      "Weather fetches by outcome.",
		}, []string{"outcome"}),
		WeatherAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "Open-Meteo request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		LLMDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Language model request duration in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_events_published_total",
			Help:      "Turn events handed to the event stream by outcome.",
		}, []string{"outcome"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Turns,
		m.AugmentedTurns,
		m.TurnDuration,
		m.ActiveSessions,
		m.WeatherCache,
		m.WeatherFetches,
		m.WeatherAPIDuration,
		m.LLMDuration,
		m.EventsPublished,
	}
}
