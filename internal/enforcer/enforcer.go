// Package enforcer assembles the consent ledger, ingestion gate, artifact
// lifecycle, and audit engine around one shared in-memory store. Callers hold
// an explicit Enforcer handle; there is no package-level state.
package enforcer

import (
	"context"
	"log/slog"

	"reciprocity/internal/artifact"
	"reciprocity/internal/auditreport"
	"reciprocity/internal/consent"
	"reciprocity/internal/ingest"
	"reciprocity/internal/ledger"
	"reciprocity/internal/platform/metrics"
	id "reciprocity/pkg/domain"
)

// Options configures an Enforcer. All fields are optional.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// AnchorMirror, when set, receives every anchor entry after commit.
	AnchorMirror consent.AnchorMirror
}

// Enforcer is one enforcement instance: a single-owner handle over the shared
// ledger store and the four components operating on it.
type Enforcer struct {
	store     *ledger.InMemoryStore
	consents  *consent.Ledger
	gate      *ingest.Gate
	lifecycle *artifact.Lifecycle
	auditor   *auditreport.Engine
}

// New creates an enforcement instance with a fresh, empty ledger.
func New(opts Options) *Enforcer {
	store := ledger.NewInMemoryStore()
	consents := consent.NewLedger(store, opts.AnchorMirror, opts.Logger, opts.Metrics)
	return &Enforcer{
		store:     store,
		consents:  consents,
		gate:      ingest.NewGate(consents, store, opts.Logger, opts.Metrics),
		lifecycle: artifact.NewLifecycle(store, opts.Logger, opts.Metrics),
		auditor:   auditreport.NewEngine(store, opts.Logger),
	}
}

// RegisterUser idempotently ensures the user exists with default consent.
func (e *Enforcer) RegisterUser(ctx context.Context, userID id.UserID) error {
	return e.consents.Register(ctx, userID)
}

// SetConsent replaces the user's consent state and returns the issued receipt.
func (e *Enforcer) SetConsent(ctx context.Context, userID id.UserID, extractive bool, expires string, scope []string) (consent.ReceiptRecord, error) {
	return e.consents.Set(ctx, userID, extractive, expires, scope)
}

// RevokeConsent forces extractive consent off and returns the issued receipt.
func (e *Enforcer) RevokeConsent(ctx context.Context, userID id.UserID) (consent.ReceiptRecord, error) {
	return e.consents.Revoke(ctx, userID)
}

// IsActiveExtractive reports whether extractive consent is currently in force.
func (e *Enforcer) IsActiveExtractive(ctx context.Context, userID id.UserID) (bool, error) {
	return e.consents.ActiveExtractive(ctx, userID)
}

// GetLatestReceipt returns the user's most recent receipt digest, or
// consent.NoReceipt for an empty history.
func (e *Enforcer) GetLatestReceipt(ctx context.Context, userID id.UserID) (string, error) {
	return e.consents.LatestReceipt(ctx, userID)
}

// GetConsentHistory returns the user's full ordered receipt history.
func (e *Enforcer) GetConsentHistory(ctx context.Context, userID id.UserID) ([]consent.ReceiptRecord, error) {
	return e.consents.History(ctx, userID)
}

// Ingest admits or denies an ingestion request under current consent.
func (e *Enforcer) Ingest(ctx context.Context, userID id.UserID, payload []byte, extractive bool, requiredScopes []string) (ingest.Result, error) {
	return e.gate.Ingest(ctx, userID, payload, extractive, requiredScopes)
}

// TransitionArtifactState advances an artifact's lifecycle state.
func (e *Enforcer) TransitionArtifactState(ctx context.Context, artifactID id.ArtifactID, newState artifact.State) error {
	return e.lifecycle.Transition(ctx, artifactID, newState)
}

// LogReuse appends a reuse-disclosure entry for an artifact id.
func (e *Enforcer) LogReuse(ctx context.Context, artifactID id.ArtifactID, disclosed bool) error {
	return e.lifecycle.LogReuse(ctx, artifactID, disclosed)
}

// Attribution returns the distinct origin users of an artifact.
func (e *Enforcer) Attribution(ctx context.Context, artifactID id.ArtifactID) ([]id.UserID, error) {
	return e.lifecycle.Attribution(ctx, artifactID)
}

// Audit computes the reciprocity-integrity report from current state.
func (e *Enforcer) Audit(ctx context.Context) (auditreport.Report, error) {
	return e.auditor.Audit(ctx)
}
