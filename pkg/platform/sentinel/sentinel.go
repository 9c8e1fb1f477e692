package sentinel

import "errors"

// Sentinel errors for store-level facts. The ledger store returns these
// (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about ledger entities, not validation
// failures:
// - ErrNotFound: entity does not exist in the store
// - ErrInvalidState: entity in wrong lifecycle state for the requested change
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
)
