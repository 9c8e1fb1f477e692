package auditreport

import (
	"reciprocity/internal/artifact"
	"reciprocity/internal/consent"
	id "reciprocity/pkg/domain"
)

// Snapshot is a consistent cross-component view of the ledger, taken in one
// critical section so no receipt appears without its anchor entry and no
// artifact state is observed mid-transition.
type Snapshot struct {
	// Consents holds the current state of every known user. Registration and
	// every operation that references a user ensure presence, so the key set
	// is the known-user set.
	Consents map[id.UserID]consent.State

	// ReceiptCounts is the per-user receipt history length.
	ReceiptCounts map[id.UserID]int

	// AnchorLen is the length of the global receipt anchor.
	AnchorLen int

	Attribution    map[id.ArtifactID][]id.UserID
	ArtifactStates map[id.ArtifactID]artifact.State
	ReuseLog       []artifact.ReuseEntry

	// ExtractiveIngests counts admitted extractive ingestions.
	ExtractiveIngests int

	// EverPublished counts transitions into published; archival never
	// decrements it.
	EverPublished int
}

// Report carries the six reciprocity-integrity metrics and their supporting
// counters. JSON keys match the emitted audit format.
type Report struct {
	// RIM1: active-extractive users / known users.
	RIM1 float64 `json:"RIM-1"`
	// RIM2: attributed artifacts / admitted extractive ingestions.
	RIM2 float64 `json:"RIM-2"`
	// RIM3: disclosed reuses / total reuses; 1.0 when nothing was logged.
	RIM3 float64 `json:"RIM-3"`
	// RIM4: active-extractive users with an expiry / active-extractive users.
	RIM4 float64 `json:"RIM-4"`
	// RIM5: active-extractive users with non-empty scope / active-extractive users.
	RIM5 float64 `json:"RIM-5"`
	// RIM6: ever-published artifacts / admitted extractive ingestions.
	RIM6 float64 `json:"RIM-6"`

	TotalUsers             int `json:"total_users"`
	ActiveConsentingUsers  int `json:"active_consenting_users"`
	ExtractiveIngests      int `json:"extractive_ingests"`
	EverPublishedArtifacts int `json:"ever_published_artifacts"`
	AttributedArtifacts    int `json:"attributed_artifacts"`
	TotalReuses            int `json:"total_reuses"`
	SilentReuses           int `json:"silent_reuses"`

	// ArtifactStates is the current-state population breakdown, distinct
	// from the ever-published counter.
	ArtifactStates map[string]int `json:"artifact_states"`

	TotalReceiptsIssued int `json:"total_receipts_issued"`
	// AnchoredReceipts always equals TotalReceiptsIssued; both are emitted so
	// the invariant is directly checkable from the report alone.
	AnchoredReceipts int `json:"anchored_receipts"`
}
