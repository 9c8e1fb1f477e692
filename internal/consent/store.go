package consent

import (
	"context"

	id "reciprocity/pkg/domain"
)

// Store is the consent-facing view of the shared ledger store.
//
// ReplaceConsent must atomically replace the user's state, append the receipt
// to the user's history, and append the matching entry to the global anchor.
// A receipt must never be observable without its anchor entry.
type Store interface {
	EnsureUser(ctx context.Context, userID id.UserID) error
	Consent(ctx context.Context, userID id.UserID) (State, bool, error)
	ReplaceConsent(ctx context.Context, userID id.UserID, state State, record ReceiptRecord) error
	Receipts(ctx context.Context, userID id.UserID) ([]ReceiptRecord, error)
	Anchor(ctx context.Context) ([]AnchorEntry, error)
}

// AnchorMirror receives every anchor entry after it is committed to the
// in-memory anchor. Implementations may persist to an external collaborator;
// failures are reported but never block consent operations.
type AnchorMirror interface {
	Append(ctx context.Context, userID id.UserID, entry AnchorEntry) error
}
