package domain

import dErrors "reciprocity/pkg/domain-errors"

// UserID identifies a data subject in the enforcement ledger.
//
// Usage: construct via ParseUserID at trust boundaries; direct casting
// bypasses validation.
type UserID string

// ParseUserID constructs a UserID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty; no other errors
// are expected.
func ParseUserID(s string) (UserID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id cannot be empty")
	}
	return UserID(s), nil
}

// String returns the string representation of the user id.
func (u UserID) String() string {
	return string(u)
}

// IsNil returns true if the user id is empty.
func (u UserID) IsNil() bool {
	return u == ""
}

// ArtifactID identifies a derivative artifact created by an extractive
// ingestion. IDs are assigned by the ingestion gate and are unique within a
// process lifetime.
type ArtifactID string

// ParseArtifactID constructs an ArtifactID from external input.
func ParseArtifactID(s string) (ArtifactID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "artifact id cannot be empty")
	}
	return ArtifactID(s), nil
}

// String returns the string representation of the artifact id.
func (a ArtifactID) String() string {
	return string(a)
}

// IsNil returns true if the artifact id is empty.
func (a ArtifactID) IsNil() bool {
	return a == ""
}
