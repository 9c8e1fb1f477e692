package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the enforcement engine. All receiver
// methods are nil-safe so services can run without metrics in tests.
type Metrics struct {
	// Receipts issued across all users (set + revoke).
	ReceiptsIssued prometheus.Counter

	// Ingestion outcomes by result ("processed", "denied") and reason
	// ("extractive", "scoped", "consent_required", "scope_not_granted").
	IngestOutcome *prometheus.CounterVec

	// Artifact lifecycle transitions by target state.
	ArtifactTransitions *prometheus.CounterVec

	// Reuse log entries by disclosure ("disclosed", "silent").
	ReuseLogged *prometheus.CounterVec

	// Anchor mirror append failures. The in-memory anchor stays canonical;
	// this only signals a degraded mirror.
	AnchorMirrorFailures prometheus.Counter
}

// New creates a new Metrics instance with all engine metrics registered.
func New() *Metrics {
	return &Metrics{
		ReceiptsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reciprocity_receipts_issued_total",
			Help: "Total consent receipts issued across all users",
		}),

		IngestOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reciprocity_ingest_outcomes_total",
			Help: "Total ingestion outcomes by result and reason",
		}, []string{"result", "reason"}),

		ArtifactTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reciprocity_artifact_transitions_total",
			Help: "Total artifact lifecycle transitions by target state",
		}, []string{"to"}),

		ReuseLogged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "reciprocity_reuse_logged_total",
			Help: "Total reuse log entries by disclosure",
		}, []string{"disclosure"}),

		AnchorMirrorFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "reciprocity_anchor_mirror_failures_total",
			Help: "Total failed appends to the durable anchor mirror",
		}),
	}
}

// IncrementReceiptsIssued records one issued receipt.
func (m *Metrics) IncrementReceiptsIssued() {
	if m != nil {
		m.ReceiptsIssued.Inc()
	}
}

// IncrementIngestOutcome records an ingestion outcome.
func (m *Metrics) IncrementIngestOutcome(result, reason string) {
	if m != nil {
		m.IngestOutcome.WithLabelValues(result, reason).Inc()
	}
}

// IncrementTransition records a lifecycle transition into a state.
func (m *Metrics) IncrementTransition(to string) {
	if m != nil {
		m.ArtifactTransitions.WithLabelValues(to).Inc()
	}
}

// IncrementReuseLogged records a reuse log entry.
func (m *Metrics) IncrementReuseLogged(disclosed bool) {
	if m == nil {
		return
	}
	disclosure := "silent"
	if disclosed {
		disclosure = "disclosed"
	}
	m.ReuseLogged.WithLabelValues(disclosure).Inc()
}

// IncrementAnchorMirrorFailures records a failed mirror append.
func (m *Metrics) IncrementAnchorMirrorFailures() {
	if m != nil {
		m.AnchorMirrorFailures.Inc()
	}
}
