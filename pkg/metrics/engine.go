package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records counters for document and inventory operations.
type EngineMetrics struct {
	documentsCreated *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	movementsPosted  *prometheus.CounterVec
	numberingRetries prometheus.Counter
	computeDuration  *prometheus.HistogramVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	documentsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "documents_created_total",
		Help: "Documents created, by document type.",
	}, []string{"type"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "document_transitions_total",
		Help: "Successful document status transitions.",
	}, []string{"type", "to_status"})
	movementsPosted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_posted_total",
		Help: "Stock movements appended to the ledger, by movement type.",
	}, []string{"type"})
	numberingRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "document_numbering_retries_total",
		Help: "Retries taken to resolve document number collisions.",
	})
	computeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "document_compute_duration_seconds",
		Help:    "Duration of document total computations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	reg.MustRegister(documentsCreated, transitions, movementsPosted, numberingRetries, computeDuration)
	return &EngineMetrics{
		documentsCreated: documentsCreated,
		transitions:      transitions,
		movementsPosted:  movementsPosted,
		numberingRetries: numberingRetries,
		computeDuration:  computeDuration,
	}
}

// IncDocumentCreated increments the created counter for the document type.
func (e *EngineMetrics) IncDocumentCreated(docType string) {
	if e == nil || e.documentsCreated == nil {
		return
	}
	e.documentsCreated.WithLabelValues(normalizeLabel(docType)).Inc()
}

// IncTransition increments the transition counter for the type/status pair.
func (e *EngineMetrics) IncTransition(docType, toStatus string) {
	if e == nil || e.transitions == nil {
		return
	}
	e.transitions.WithLabelValues(normalizeLabel(docType), normalizeLabel(toStatus)).Inc()
}

// IncMovementPosted increments the ledger counter for the movement type.
func (e *EngineMetrics) IncMovementPosted(movementType string) {
	if e == nil || e.movementsPosted == nil {
		return
	}
	e.movementsPosted.WithLabelValues(normalizeLabel(movementType)).Inc()
}

// IncNumberingRetry increments the number collision retry counter.
func (e *EngineMetrics) IncNumberingRetry() {
	if e == nil || e.numberingRetries == nil {
		return
	}
	e.numberingRetries.Inc()
}

// ObserveComputeDuration records how long a totals computation took.
func (e *EngineMetrics) ObserveComputeDuration(docType string, duration time.Duration) {
	if e == nil || e.computeDuration == nil {
		return
	}
	e.computeDuration.WithLabelValues(normalizeLabel(docType)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
