// Package ingest decides whether an ingestion request is permitted under
// current consent, and records attribution when it creates a derivative
// artifact. Extractive ingestion (creates a trackable derivative) is kept
// separate from scoped access (requires permission but produces nothing
// attributable) so read-only scoped reads coexist with reciprocity
// bookkeeping without polluting artifact accounting.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"

	"reciprocity/internal/platform/metrics"
	id "reciprocity/pkg/domain"
	dErrors "reciprocity/pkg/domain-errors"
	platformstrings "reciprocity/pkg/platform/strings"
)

// Status is the outcome of an admitted ingestion.
type Status string

// StatusProcessed is the only success status.
const StatusProcessed Status = "Processed"

// Result is returned by Ingest on success. ArtifactID is empty for
// non-extractive ingestions, which create no artifact record at all.
type Result struct {
	Status     Status
	ArtifactID id.ArtifactID
}

// ConsentChecker is the slice of the consent ledger the gate consults before
// admitting a request.
type ConsentChecker interface {
	Register(ctx context.Context, userID id.UserID) error
	ActiveExtractive(ctx context.Context, userID id.UserID) (bool, error)
	Covers(ctx context.Context, userID id.UserID, required []string) (bool, error)
}

// Store is the gate-facing view of the shared ledger store.
//
// RecordExtractiveIngest must atomically increment the admitted-extractive
// counter, link the origin user into the artifact's attribution (distinct,
// first-contribution order), and set the artifact state to generated.
type Store interface {
	RecordExtractiveIngest(ctx context.Context, artifactID id.ArtifactID, origin id.UserID) error
}

// Gate enforces consent on ingestion requests.
type Gate struct {
	consent ConsentChecker
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	// seq disambiguates artifacts derived from identical payloads. Combined
	// with the payload fingerprint this is collision-free within one gate,
	// unlike wall-clock-derived ids under high-frequency calls.
	seq atomic.Uint64
}

// NewGate creates an ingestion gate. logger and metrics may be nil in tests.
func NewGate(consent ConsentChecker, store Store, logger *slog.Logger, m *metrics.Metrics) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{consent: consent, store: store, logger: logger, metrics: m}
}

// Ingest admits or denies an ingestion request for userID. Unknown users are
// registered first. Enforcement runs when the request is extractive or names
// required scopes; a plain non-extractive, unscoped ingest is always
// admitted. The payload is consumed only to derive the artifact identity and
// is not persisted.
//
// Errors: CodeConsentRequired when extractive/scoped access is requested
// without active opt-in consent; CodeScopeNotGranted when a required scope is
// missing from the user's grant.
func (g *Gate) Ingest(ctx context.Context, userID id.UserID, payload []byte, extractive bool, requiredScopes []string) (Result, error) {
	if err := g.consent.Register(ctx, userID); err != nil {
		return Result{}, err
	}

	required := platformstrings.DedupeAndTrim(requiredScopes)

	if extractive || len(required) > 0 {
		active, err := g.consent.ActiveExtractive(ctx, userID)
		if err != nil {
			return Result{}, err
		}
		if !active {
			g.metrics.IncrementIngestOutcome("denied", "consent_required")
			return Result{}, dErrors.New(dErrors.CodeConsentRequired,
				"extractive use or scoped access requires active opt-in consent")
		}
		if len(required) > 0 {
			covered, err := g.consent.Covers(ctx, userID, required)
			if err != nil {
				return Result{}, err
			}
			if !covered {
				g.metrics.IncrementIngestOutcome("denied", "scope_not_granted")
				return Result{}, dErrors.New(dErrors.CodeScopeNotGranted,
					"required scopes not covered by user consent")
			}
		}
	}

	if !extractive {
		reason := "plain"
		if len(required) > 0 {
			reason = "scoped"
		}
		g.metrics.IncrementIngestOutcome("processed", reason)
		return Result{Status: StatusProcessed}, nil
	}

	artifactID := g.nextArtifactID(payload)
	if err := g.store.RecordExtractiveIngest(ctx, artifactID, userID); err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "record derivative")
	}
	g.metrics.IncrementIngestOutcome("processed", "extractive")
	g.logger.DebugContext(ctx, "extractive ingest admitted",
		"user_id", userID.String(),
		"artifact_id", artifactID.String(),
	)
	return Result{Status: StatusProcessed, ArtifactID: artifactID}, nil
}

// nextArtifactID derives a fresh identifier from the payload content and a
// per-gate sequence number.
func (g *Gate) nextArtifactID(payload []byte) id.ArtifactID {
	digest := sha256.Sum256(payload)
	fingerprint := hex.EncodeToString(digest[:6])
	return id.ArtifactID(fmt.Sprintf("artifact_%s-%d", fingerprint, g.seq.Add(1)))
}
