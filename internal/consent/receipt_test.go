package consent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "reciprocity/pkg/domain"
)

func TestFingerprintDeterminism(t *testing.T) {
	state := State{Extractive: true, Expires: "2027-06-30", Scope: []string{"research", "training"}}

	first, err := Fingerprint(id.UserID("u1"), state)
	require.NoError(t, err)
	second, err := Fingerprint(id.UserID("u1"), state)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical states must hash identically")
	assert.Len(t, first, 64, "sha256 hex digest")
}

func TestFingerprintRederivableFromSnapshot(t *testing.T) {
	// An auditor holding a stored ReceiptRecord must be able to reproduce
	// the digest from the snapshot alone.
	state := State{Extractive: true, Scope: []string{"research"}}.Normalize()
	digest, err := Fingerprint(id.UserID("u1"), state)
	require.NoError(t, err)

	record := ReceiptRecord{Receipt: digest, Snapshot: state}
	rederived, err := Fingerprint(id.UserID("u1"), record.Snapshot)
	require.NoError(t, err)
	assert.Equal(t, record.Receipt, rederived)
}

func TestFingerprintSensitivity(t *testing.T) {
	base := State{Extractive: true, Scope: []string{"research"}}

	baseDigest, err := Fingerprint(id.UserID("u1"), base)
	require.NoError(t, err)

	otherUser, err := Fingerprint(id.UserID("u2"), base)
	require.NoError(t, err)
	assert.NotEqual(t, baseDigest, otherUser, "user id is part of the digest")

	revoked := base
	revoked.Extractive = false
	revokedDigest, err := Fingerprint(id.UserID("u1"), revoked)
	require.NoError(t, err)
	assert.NotEqual(t, baseDigest, revokedDigest)

	withExpiry := base
	withExpiry.Expires = "2027-01-01"
	expiryDigest, err := Fingerprint(id.UserID("u1"), withExpiry)
	require.NoError(t, err)
	assert.NotEqual(t, baseDigest, expiryDigest)
}

func TestFingerprintNilScopeMatchesEmptyScope(t *testing.T) {
	// A nil scope slice and an explicitly empty one are the same declared
	// state and must produce the same receipt.
	nilScope, err := Fingerprint(id.UserID("u1"), State{Extractive: true})
	require.NoError(t, err)
	emptyScope, err := Fingerprint(id.UserID("u1"), State{Extractive: true, Scope: []string{}})
	require.NoError(t, err)
	assert.Equal(t, nilScope, emptyScope)
}
