package artifact

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"reciprocity/internal/platform/metrics"
	id "reciprocity/pkg/domain"
	dErrors "reciprocity/pkg/domain-errors"
	"reciprocity/pkg/platform/sentinel"
)

// Store is the lifecycle-facing view of the shared ledger store.
//
// TransitionArtifact applies the state machine atomically: it must reject
// unknown artifacts with sentinel.ErrNotFound and disallowed transitions with
// sentinel.ErrInvalidState, and count entries into StatePublished in the
// ever-published counter. AppendReuse must append the entry and, when the
// artifact exists in StateGenerated or StateUsed, force it to StateUsed in
// the same critical section.
type Store interface {
	ArtifactState(ctx context.Context, artifactID id.ArtifactID) (State, bool, error)
	Attribution(ctx context.Context, artifactID id.ArtifactID) ([]id.UserID, error)
	TransitionArtifact(ctx context.Context, artifactID id.ArtifactID, to State) error
	AppendReuse(ctx context.Context, entry ReuseEntry) error
}

// Lifecycle owns the finite-state lifecycle of each artifact and the
// reuse-disclosure log.
type Lifecycle struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewLifecycle creates an artifact lifecycle service. logger and metrics may
// be nil in tests.
func NewLifecycle(store Store, logger *slog.Logger, m *metrics.Metrics) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lifecycle{store: store, logger: logger, metrics: m}
}

// Transition advances the artifact to newState.
//
// Errors: CodeArtifactNotFound when the id was never created by an extractive
// ingestion; CodeInvalidTransition when newState is not reachable from the
// current state.
func (l *Lifecycle) Transition(ctx context.Context, artifactID id.ArtifactID, newState State) error {
	err := l.store.TransitionArtifact(ctx, artifactID, newState)
	switch {
	case err == nil:
		l.metrics.IncrementTransition(newState.String())
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeArtifactNotFound, "artifact "+artifactID.String()+" not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidTransition, "invalid transition to "+newState.String())
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "transition artifact")
	}
}

// LogReuse appends a reuse-disclosure entry. The entry is recorded even when
// the artifact id is unknown. A known artifact still in StateGenerated or
// StateUsed is forced to StateUsed; published and archived artifacts are left
// untouched.
func (l *Lifecycle) LogReuse(ctx context.Context, artifactID id.ArtifactID, disclosed bool) error {
	entry := ReuseEntry{
		ArtifactID: artifactID,
		Disclosed:  disclosed,
		Timestamp:  time.Now().UTC(),
	}
	if err := l.store.AppendReuse(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "append reuse entry")
	}
	l.metrics.IncrementReuseLogged(disclosed)
	if !disclosed {
		l.logger.DebugContext(ctx, "silent reuse logged", "artifact_id", artifactID.String())
	}
	return nil
}

// StateOf returns the artifact's current lifecycle state.
func (l *Lifecycle) StateOf(ctx context.Context, artifactID id.ArtifactID) (State, error) {
	state, ok, err := l.store.ArtifactState(ctx, artifactID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "load artifact state")
	}
	if !ok {
		return "", dErrors.New(dErrors.CodeArtifactNotFound, "artifact "+artifactID.String()+" not found")
	}
	return state, nil
}

// Attribution returns the distinct origin users of an artifact, in
// first-contribution order. Unknown artifacts have no attribution.
func (l *Lifecycle) Attribution(ctx context.Context, artifactID id.ArtifactID) ([]id.UserID, error) {
	users, err := l.store.Attribution(ctx, artifactID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load attribution")
	}
	return users, nil
}
