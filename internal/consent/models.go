package consent

import (
	"strings"
	"time"

	platformstrings "reciprocity/pkg/platform/strings"
)

// State captures a user's current consent decision. It is replaced wholesale
// on every change; partial mutation happens only through Revoke, which forces
// Extractive to false and leaves the rest untouched.
type State struct {
	// Extractive is true when derivative use is currently opted in.
	Extractive bool
	// Expires is an ISO-8601 date or date-time string. Empty means no expiry.
	// Only the date portion is significant for expiry comparison.
	Expires string
	// Scope holds the named permissions the user has granted, deduplicated,
	// in grant order. Empty means no scoped restrictions declared.
	Scope []string
}

// DefaultState is the consent assigned at registration: nothing opted in.
func DefaultState() State {
	return State{Extractive: false, Expires: "", Scope: []string{}}
}

// Normalize dedupes and trims the scope set and guarantees a non-nil slice so
// the canonical receipt encoding is stable.
func (s State) Normalize() State {
	scope := platformstrings.DedupeAndTrim(s.Scope)
	if scope == nil {
		scope = []string{}
	}
	s.Scope = scope
	return s
}

// ActiveExtractive returns true when extractive consent is currently in
// force. A set expiry makes consent inactive once now's date is strictly
// after it. A malformed expiry is treated as no expiry: enforcement fails
// open on ledger data-quality issues rather than blocking ingestion.
func (s State) ActiveExtractive(now time.Time) bool {
	if !s.Extractive {
		return false
	}
	if s.Expires == "" {
		return true
	}
	expiry, err := parseExpiryDate(s.Expires)
	if err != nil {
		return true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !today.After(expiry)
}

// HasExpiry reports whether an expiry value is set, regardless of validity.
func (s State) HasExpiry() bool {
	return s.Expires != ""
}

// Covers reports whether every required scope is granted.
func (s State) Covers(required []string) bool {
	return platformstrings.ContainsAll(s.Scope, required)
}

// Clone returns a deep copy so stored state never aliases caller slices.
func (s State) Clone() State {
	scope := make([]string, len(s.Scope))
	copy(scope, s.Scope)
	s.Scope = scope
	return s
}

// parseExpiryDate extracts the date portion of an ISO-8601 date or date-time
// string.
func parseExpiryDate(value string) (time.Time, error) {
	datePart, _, _ := strings.Cut(value, "T")
	return time.Parse("2006-01-02", datePart)
}

// ReceiptRecord is one entry of a user's append-only receipt history.
type ReceiptRecord struct {
	// ID is a random identifier for the record itself; the Receipt digest is
	// the tamper-evident part.
	ID        string
	Timestamp time.Time
	// Receipt is the hex-encoded digest over the user id and the canonical
	// encoding of Snapshot. See Fingerprint.
	Receipt string
	// Snapshot is a copy of the consent state at issuance.
	Snapshot State
}

// AnchorEntry is one entry of the global append-only anchor: a public ledger
// of every receipt ever issued, across all users, in issuance order.
type AnchorEntry struct {
	Receipt   string
	Timestamp time.Time
}
