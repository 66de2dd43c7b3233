package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingest outcomes.
const (
	OutcomeStored      = "stored"
	OutcomeDuplicate   = "duplicate"
	OutcomeUnparseable = "unparseable"
	OutcomeSkipped     = "skipped"
)

// IngestMetrics counts raw log records by what the pipeline did with them.
type IngestMetrics struct {
	records *prometheus.CounterVec
}

// NewIngestMetrics registers the ingest counters on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_records_total",
		Help:      "Raw log records processed, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(records)
	return &IngestMetrics{records: records}
}

// Add increments the counter for outcome by n.
func (m *IngestMetrics) Add(outcome string, n int) {
	if m == nil || m.records == nil || n <= 0 {
		return
	}
	m.records.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}

// Counter exposes the counter for one outcome.
func (m *IngestMetrics) Counter(outcome string) prometheus.Counter {
	return m.records.WithLabelValues(normalizeLabel(outcome))
}
