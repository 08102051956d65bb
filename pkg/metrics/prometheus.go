package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ItinerariesParsed *prometheus.CounterVec
	ParseDuration     prometheus.Histogram
	RecordsPersisted  prometheus.Counter
	RemindersFired    *prometheus.CounterVec
	ErrorsCount       *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics on the default registry
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith registers the metrics on the given registerer. Tests
// pass a fresh registry to avoid duplicate registration panics.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ItinerariesParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "itineraries_parsed_total",
			Help:      "The total number of itinerary parse attempts by source and outcome",
		}, []string{"source", "outcome"}),
		ParseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "itinerary_parse_duration_seconds",
			Help:      "Time taken to parse one pasted itinerary",
			Buckets:   prometheus.DefBuckets,
		}),
		RecordsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "travel_records_persisted_total",
			Help:      "The total number of travel records written",
		}),
		RemindersFired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkin_reminders_fired_total",
			Help:      "The total number of check-in reminders fired by offset",
		}, []string{"offset"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors by operation",
		}, []string{"operation"}),
	}
}
