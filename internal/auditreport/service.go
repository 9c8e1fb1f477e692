package auditreport

import (
	"context"
	"log/slog"
	"math"
	"time"

	"reciprocity/internal/artifact"
	dErrors "reciprocity/pkg/domain-errors"
)

// Store is the audit-facing view of the shared ledger store.
type Store interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Engine computes the reciprocity-integrity report. Audit is a pure read:
// deterministic given the ledger state and the current date, and mutates
// nothing.
type Engine struct {
	store  Store
	logger *slog.Logger
}

// NewEngine creates an audit engine. logger may be nil in tests.
func NewEngine(store Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger}
}

// Audit produces a report from the current ledger state. Zero denominators
// yield 0.0, except RIM-3 which defaults to 1.0 when no reuse was ever
// logged: no evidence of non-disclosure is treated as fully disclosed.
func (e *Engine) Audit(ctx context.Context) (Report, error) {
	snap, err := e.store.Snapshot(ctx)
	if err != nil {
		return Report{}, dErrors.Wrap(err, dErrors.CodeInternal, "snapshot ledger")
	}
	now := time.Now()

	totalUsers := len(snap.Consents)
	activeConsenting := 0
	expiryBound := 0
	scoped := 0
	for _, state := range snap.Consents {
		if !state.ActiveExtractive(now) {
			continue
		}
		activeConsenting++
		if state.HasExpiry() {
			expiryBound++
		}
		if len(state.Scope) > 0 {
			scoped++
		}
	}

	totalReuses := len(snap.ReuseLog)
	silentReuses := 0
	for _, entry := range snap.ReuseLog {
		if !entry.Disclosed {
			silentReuses++
		}
	}

	stateCounts := make(map[string]int, len(artifact.States()))
	for _, s := range artifact.States() {
		stateCounts[s.String()] = 0
	}
	for _, s := range snap.ArtifactStates {
		stateCounts[s.String()]++
	}

	totalReceipts := 0
	for _, n := range snap.ReceiptCounts {
		totalReceipts += n
	}
	if totalReceipts != snap.AnchorLen {
		// Should be unreachable: receipt and anchor appends share one
		// critical section.
		e.logger.ErrorContext(ctx, "anchor length diverged from receipt total",
			"anchor_len", snap.AnchorLen,
			"total_receipts", totalReceipts,
		)
	}

	disclosedRate := 1.0
	if totalReuses > 0 {
		disclosedRate = float64(totalReuses-silentReuses) / float64(totalReuses)
	}

	return Report{
		RIM1: ratio(activeConsenting, totalUsers),
		RIM2: ratio(len(snap.Attribution), snap.ExtractiveIngests),
		RIM3: round4(disclosedRate),
		RIM4: ratio(expiryBound, activeConsenting),
		RIM5: ratio(scoped, activeConsenting),
		RIM6: ratio(snap.EverPublished, snap.ExtractiveIngests),

		TotalUsers:             totalUsers,
		ActiveConsentingUsers:  activeConsenting,
		ExtractiveIngests:      snap.ExtractiveIngests,
		EverPublishedArtifacts: snap.EverPublished,
		AttributedArtifacts:    len(snap.Attribution),
		TotalReuses:            totalReuses,
		SilentReuses:           silentReuses,
		ArtifactStates:         stateCounts,
		TotalReceiptsIssued:    totalReceipts,
		AnchoredReceipts:       snap.AnchorLen,
	}, nil
}

// ratio is a zero-guarded division rounded to 4 decimal places.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0.0
	}
	return round4(float64(num) / float64(den))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
