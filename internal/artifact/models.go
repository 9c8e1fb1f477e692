package artifact

import (
	"time"

	id "reciprocity/pkg/domain"
	dErrors "reciprocity/pkg/domain-errors"
)

// State is the lifecycle state of a derivative artifact. Artifacts are
// created in StateGenerated by an extractive ingestion and only move forward:
//
//	generated → used | archived
//	used      → published | archived
//	published → archived
//	archived  → (terminal)
type State string

const (
	StateGenerated State = "generated"
	StateUsed      State = "used"
	StatePublished State = "published"
	StateArchived  State = "archived"
)

// States lists all lifecycle states in progression order, for report
// population breakdowns.
func States() []State {
	return []State{StateGenerated, StateUsed, StatePublished, StateArchived}
}

var transitions = map[State][]State{
	StateGenerated: {StateUsed, StateArchived},
	StateUsed:      {StatePublished, StateArchived},
	StatePublished: {StateArchived},
	StateArchived:  {},
}

// ParseState constructs a State from external input.
func ParseState(s string) (State, error) {
	st := State(s)
	if _, ok := transitions[st]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown artifact state: "+s)
	}
	return st, nil
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ReuseEntry is one entry of the append-only reuse-disclosure log. Entries
// are recorded even for unknown artifact ids: reuse logging is the signal of
// last resort for detecting silent reuse and must not be blocked by
// bookkeeping gaps.
type ReuseEntry struct {
	ArtifactID id.ArtifactID
	Disclosed  bool
	Timestamp  time.Time
}
