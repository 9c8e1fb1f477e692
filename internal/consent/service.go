package consent

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reciprocity/internal/platform/metrics"
	id "reciprocity/pkg/domain"
	dErrors "reciprocity/pkg/domain-errors"
)

// NoReceipt is returned by LatestReceipt for users with an empty history.
const NoReceipt = "none"

// Ledger owns per-user consent state and the append-only receipt history.
// Every state change issues a tamper-evident receipt and anchors it in the
// global receipt log. It keeps orchestration out of callers and domain logic
// thin.
type Ledger struct {
	store   Store
	mirror  AnchorMirror
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewLedger creates a consent ledger. mirror may be nil when no durable
// anchor collaborator is configured; logger and metrics may be nil in tests.
func NewLedger(store Store, mirror AnchorMirror, logger *slog.Logger, m *metrics.Metrics) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{store: store, mirror: mirror, logger: logger, metrics: m}
}

// Register idempotently ensures the user exists with the default consent
// state and an empty receipt history.
func (l *Ledger) Register(ctx context.Context, userID id.UserID) error {
	if err := l.store.EnsureUser(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "register user")
	}
	return nil
}

// Set replaces the user's consent state wholesale and returns the issued
// receipt. Unknown users are registered first.
func (l *Ledger) Set(ctx context.Context, userID id.UserID, extractive bool, expires string, scope []string) (ReceiptRecord, error) {
	if err := l.Register(ctx, userID); err != nil {
		return ReceiptRecord{}, err
	}
	state := State{Extractive: extractive, Expires: expires, Scope: scope}.Normalize()
	return l.issue(ctx, userID, state)
}

// Revoke forces extractive consent off, leaving expiry and scope untouched,
// and returns the issued receipt. Unknown users are registered first.
func (l *Ledger) Revoke(ctx context.Context, userID id.UserID) (ReceiptRecord, error) {
	if err := l.Register(ctx, userID); err != nil {
		return ReceiptRecord{}, err
	}
	state, _, err := l.store.Consent(ctx, userID)
	if err != nil {
		return ReceiptRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "load consent")
	}
	state.Extractive = false
	return l.issue(ctx, userID, state)
}

// issue fingerprints the state, commits state + receipt + anchor entry in one
// store call, then fans out to the mirror.
func (l *Ledger) issue(ctx context.Context, userID id.UserID, state State) (ReceiptRecord, error) {
	digest, err := Fingerprint(userID, state)
	if err != nil {
		return ReceiptRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "fingerprint consent state")
	}

	record := ReceiptRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Receipt:   digest,
		Snapshot:  state,
	}
	if err := l.store.ReplaceConsent(ctx, userID, state, record); err != nil {
		return ReceiptRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "replace consent")
	}
	l.metrics.IncrementReceiptsIssued()

	if l.mirror != nil {
		entry := AnchorEntry{Receipt: record.Receipt, Timestamp: record.Timestamp}
		if err := l.mirror.Append(ctx, userID, entry); err != nil {
			// The in-memory anchor is canonical; a degraded mirror must not
			// fail the consent change.
			l.metrics.IncrementAnchorMirrorFailures()
			l.logger.WarnContext(ctx, "anchor mirror append failed",
				"user_id", userID.String(),
				"receipt", record.Receipt,
				"error", err.Error(),
			)
		}
	}

	return record, nil
}

// ActiveExtractive reports whether the user currently has extractive consent
// in force. Unknown users are inactive.
func (l *Ledger) ActiveExtractive(ctx context.Context, userID id.UserID) (bool, error) {
	state, ok, err := l.store.Consent(ctx, userID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "load consent")
	}
	if !ok {
		return false, nil
	}
	return state.ActiveExtractive(time.Now()), nil
}

// Scope returns the user's current granted scope set. Unknown users have an
// empty scope.
func (l *Ledger) Scope(ctx context.Context, userID id.UserID) ([]string, error) {
	state, ok, err := l.store.Consent(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load consent")
	}
	if !ok {
		return nil, nil
	}
	return state.Scope, nil
}

// Covers reports whether the user's current scope set grants every required
// scope. Unknown users cover nothing but the empty set.
func (l *Ledger) Covers(ctx context.Context, userID id.UserID, required []string) (bool, error) {
	state, ok, err := l.store.Consent(ctx, userID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "load consent")
	}
	if !ok {
		return len(required) == 0, nil
	}
	return state.Covers(required), nil
}

// LatestReceipt returns the digest of the user's most recent receipt, or
// NoReceipt when the history is empty.
func (l *Ledger) LatestReceipt(ctx context.Context, userID id.UserID) (string, error) {
	records, err := l.store.Receipts(ctx, userID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "load receipts")
	}
	if len(records) == 0 {
		return NoReceipt, nil
	}
	return records[len(records)-1].Receipt, nil
}

// History returns the user's full ordered receipt history. Unknown users have
// an empty history.
func (l *Ledger) History(ctx context.Context, userID id.UserID) ([]ReceiptRecord, error) {
	records, err := l.store.Receipts(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load receipts")
	}
	return records, nil
}
