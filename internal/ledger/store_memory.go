// Package ledger holds the single shared store behind the enforcement
// engine. One store instance backs all four components; every mutating
// operation is one critical section, so cross-field invariants (a receipt
// never without its anchor entry, attribution never without a generated
// artifact) hold at every observable point.
package ledger

import (
	"context"
	"sync"

	"reciprocity/internal/artifact"
	"reciprocity/internal/auditreport"
	"reciprocity/internal/consent"
	id "reciprocity/pkg/domain"
	"reciprocity/pkg/platform/sentinel"
)

// InMemoryStore is the canonical in-memory ledger. It implements the store
// interfaces of the consent, ingest, artifact, and auditreport packages.
type InMemoryStore struct {
	mu sync.RWMutex

	consents    map[id.UserID]consent.State
	receipts    map[id.UserID][]consent.ReceiptRecord
	anchor      []consent.AnchorEntry
	attribution map[id.ArtifactID][]id.UserID
	artifacts   map[id.ArtifactID]artifact.State
	reuseLog    []artifact.ReuseEntry

	extractiveIngests int
	everPublished     int
}

// NewInMemoryStore creates an empty ledger store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		consents:    make(map[id.UserID]consent.State),
		receipts:    make(map[id.UserID][]consent.ReceiptRecord),
		attribution: make(map[id.ArtifactID][]id.UserID),
		artifacts:   make(map[id.ArtifactID]artifact.State),
	}
}

// EnsureUser idempotently adds the user with the default consent state and an
// empty receipt history.
func (s *InMemoryStore) EnsureUser(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.consents[userID]; !ok {
		s.consents[userID] = consent.DefaultState()
	}
	if _, ok := s.receipts[userID]; !ok {
		s.receipts[userID] = nil
	}
	return nil
}

// Consent returns the user's current state and whether the user is known.
func (s *InMemoryStore) Consent(_ context.Context, userID id.UserID) (consent.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.consents[userID]
	if !ok {
		return consent.State{}, false, nil
	}
	return state.Clone(), true, nil
}

// ReplaceConsent replaces the user's state wholesale and appends the receipt
// to the user's history and to the global anchor in one critical section.
func (s *InMemoryStore) ReplaceConsent(_ context.Context, userID id.UserID, state consent.State, record consent.ReceiptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.Snapshot = record.Snapshot.Clone()
	s.consents[userID] = state.Clone()
	s.receipts[userID] = append(s.receipts[userID], record)
	s.anchor = append(s.anchor, consent.AnchorEntry{
		Receipt:   record.Receipt,
		Timestamp: record.Timestamp,
	})
	return nil
}

// Receipts returns a copy of the user's ordered receipt history.
func (s *InMemoryStore) Receipts(_ context.Context, userID id.UserID) ([]consent.ReceiptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]consent.ReceiptRecord{}, s.receipts[userID]...), nil
}

// Anchor returns a copy of the global receipt anchor.
func (s *InMemoryStore) Anchor(_ context.Context) ([]consent.AnchorEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]consent.AnchorEntry{}, s.anchor...), nil
}

// RecordExtractiveIngest counts an admitted extractive ingestion, links the
// origin user into the artifact's attribution, and creates the artifact in
// the generated state.
func (s *InMemoryStore) RecordExtractiveIngest(_ context.Context, artifactID id.ArtifactID, origin id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.extractiveIngests++
	known := false
	for _, u := range s.attribution[artifactID] {
		if u == origin {
			known = true
			break
		}
	}
	if !known {
		s.attribution[artifactID] = append(s.attribution[artifactID], origin)
	}
	s.artifacts[artifactID] = artifact.StateGenerated
	return nil
}

// ArtifactState returns the artifact's current state and whether it exists.
func (s *InMemoryStore) ArtifactState(_ context.Context, artifactID id.ArtifactID) (artifact.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.artifacts[artifactID]
	return state, ok, nil
}

// Attribution returns a copy of the artifact's origin users in
// first-contribution order.
func (s *InMemoryStore) Attribution(_ context.Context, artifactID id.ArtifactID) ([]id.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]id.UserID{}, s.attribution[artifactID]...), nil
}

// TransitionArtifact applies one lifecycle step. Entering published bumps the
// ever-published counter; later archival does not undo it.
func (s *InMemoryStore) TransitionArtifact(_ context.Context, artifactID id.ArtifactID, to artifact.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.artifacts[artifactID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !current.CanTransitionTo(to) {
		return sentinel.ErrInvalidState
	}
	if to == artifact.StatePublished {
		s.everPublished++
	}
	s.artifacts[artifactID] = to
	return nil
}

// AppendReuse appends a reuse entry and forces a known generated/used
// artifact to used in the same critical section. Unknown artifact ids are
// logged as-is.
func (s *InMemoryStore) AppendReuse(_ context.Context, entry artifact.ReuseEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.artifacts[entry.ArtifactID]; ok {
		if state == artifact.StateGenerated || state == artifact.StateUsed {
			s.artifacts[entry.ArtifactID] = artifact.StateUsed
		}
	}
	s.reuseLog = append(s.reuseLog, entry)
	return nil
}

// Snapshot returns a deep copy of the whole ledger under one read lock.
func (s *InMemoryStore) Snapshot(_ context.Context) (auditreport.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := auditreport.Snapshot{
		Consents:          make(map[id.UserID]consent.State, len(s.consents)),
		ReceiptCounts:     make(map[id.UserID]int, len(s.receipts)),
		AnchorLen:         len(s.anchor),
		Attribution:       make(map[id.ArtifactID][]id.UserID, len(s.attribution)),
		ArtifactStates:    make(map[id.ArtifactID]artifact.State, len(s.artifacts)),
		ReuseLog:          append([]artifact.ReuseEntry{}, s.reuseLog...),
		ExtractiveIngests: s.extractiveIngests,
		EverPublished:     s.everPublished,
	}
	for userID, state := range s.consents {
		snap.Consents[userID] = state.Clone()
	}
	for userID, records := range s.receipts {
		snap.ReceiptCounts[userID] = len(records)
	}
	for artifactID, users := range s.attribution {
		snap.Attribution[artifactID] = append([]id.UserID{}, users...)
	}
	for artifactID, state := range s.artifacts {
		snap.ArtifactStates[artifactID] = state
	}
	return snap, nil
}
