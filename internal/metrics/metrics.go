package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics collects loader statistics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	// Counters
	filesLoaded  prometheus.Counter
	triplesRead  prometheus.Counter
	triplesAdded prometheus.Counter
	parseErrors  *prometheus.CounterVec

	// Latency histograms
	parseDuration  *prometheus.HistogramVec
	insertDuration prometheus.Histogram
}

// New creates and registers the loader metrics
func New() *Metrics {
	m := &Metrics{
		filesLoaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "turtle_files_loaded_total",
				Help: "number of documents parsed and stored",
			},
		),
		triplesRead: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "turtle_triples_parsed_total",
				Help: "number of triples produced by the parsers",
			},
		),
		triplesAdded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "turtle_triples_added_total",
				Help: "number of triples that were new to the store",
			},
		),
		parseErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turtle_parse_errors_total",
				Help: "number of documents rejected by a parser",
			},
			[]string{"format"},
		),
		parseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "turtle_parse_duration_seconds",
				Help:    "time to parse one document",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
			[]string{"format"},
		),
		insertDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "turtle_insert_duration_seconds",
				Help:    "time to store the triples of one document",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
			},
		),
	}
	m.registry = prometheus.NewPedanticRegistry()
	reg := m.registry

	reg.MustRegister(m.filesLoaded)
	reg.MustRegister(m.triplesRead)
	reg.MustRegister(m.triplesAdded)
	reg.MustRegister(m.parseErrors)
	reg.MustRegister(m.parseDuration)
	reg.MustRegister(m.insertDuration)
	return m
}

// Registry returns the registry holding the metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveParse records a successful parse of a document
func (m *Metrics) ObserveParse(format string, triples int, took time.Duration) {
	m.triplesRead.Add(float64(triples))
	m.parseDuration.WithLabelValues(format).Observe(took.Seconds())
}

// ObserveParseError records a document rejected by a parser
func (m *Metrics) ObserveParseError(format string) {
	m.parseErrors.WithLabelValues(format).Inc()
}

// ObserveInsert records the storing of a parsed document
func (m *Metrics) ObserveInsert(added int, took time.Duration) {
	m.filesLoaded.Inc()
	m.triplesAdded.Add(float64(added))
	m.insertDuration.Observe(took.Seconds())
}

// WriteText writes all metrics in the Prometheus text format
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
