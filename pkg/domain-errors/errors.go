// Package errors provides coded domain errors. Services translate store
// sentinels and validation failures into these so callers can branch on a
// stable code instead of matching message text.
package errors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeConsentRequired marks an extractive or scoped ingestion attempted
	// without active opt-in consent.
	CodeConsentRequired Code = "consent_required"

	// CodeScopeNotGranted marks an ingestion whose required scopes are not
	// covered by the user's granted scope set.
	CodeScopeNotGranted Code = "scope_not_granted"

	// CodeArtifactNotFound marks an operation on an artifact id that was
	// never created by an extractive ingestion.
	CodeArtifactNotFound Code = "artifact_not_found"

	// CodeInvalidTransition marks a lifecycle transition not reachable from
	// the artifact's current state.
	CodeInvalidTransition Code = "invalid_transition"

	CodeInvalidInput Code = "invalid_input"
	CodeInternal     Code = "internal"
)

// Error is a domain error with a stable code.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error. The cause remains
// reachable through errors.Is / errors.As.
func Wrap(cause error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// IsPermissionDenied reports whether err is one of the consent-enforcement
// denials raised by the ingestion gate.
func IsPermissionDenied(err error) bool {
	return HasCode(err, CodeConsentRequired) || HasCode(err, CodeScopeNotGranted)
}

// IsInvalidState reports whether err is one of the lifecycle failures raised
// by artifact transitions.
func IsInvalidState(err error) bool {
	return HasCode(err, CodeArtifactNotFound) || HasCode(err, CodeInvalidTransition)
}
