package ledger_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"reciprocity/internal/artifact"
	"reciprocity/internal/consent"
	"reciprocity/internal/ledger"
	id "reciprocity/pkg/domain"
	"reciprocity/pkg/platform/sentinel"
)

func TestConsentRoundTripReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewInMemoryStore()

	state := consent.State{Extractive: true, Scope: []string{"research"}}
	require.NoError(t, store.ReplaceConsent(ctx, "u1", state, consent.ReceiptRecord{Receipt: "r1"}))

	loaded, ok, err := store.Consent(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	loaded.Scope[0] = "mutated"

	again, _, err := store.Consent(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "research", again.Scope[0], "store must hand out defensive copies")
}

func TestEnsureUserDoesNotResetConsent(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewInMemoryStore()

	state := consent.State{Extractive: true}
	require.NoError(t, store.ReplaceConsent(ctx, "u1", state, consent.ReceiptRecord{Receipt: "r1"}))
	require.NoError(t, store.EnsureUser(ctx, "u1"))

	loaded, ok, err := store.Consent(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, loaded.Extractive)
}

func TestTransitionArtifactSentinels(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewInMemoryStore()

	err := store.TransitionArtifact(ctx, "missing", artifact.StateUsed)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, store.RecordExtractiveIngest(ctx, "a1", "u1"))
	err = store.TransitionArtifact(ctx, "a1", artifact.StateArchived)
	require.NoError(t, err)
	err = store.TransitionArtifact(ctx, "a1", artifact.StatePublished)
	assert.ErrorIs(t, err, sentinel.ErrInvalidState)
}

func TestEverPublishedCounterSurvivesArchival(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewInMemoryStore()

	require.NoError(t, store.RecordExtractiveIngest(ctx, "a1", "u1"))
	require.NoError(t, store.TransitionArtifact(ctx, "a1", artifact.StateUsed))
	require.NoError(t, store.TransitionArtifact(ctx, "a1", artifact.StatePublished))
	require.NoError(t, store.TransitionArtifact(ctx, "a1", artifact.StateArchived))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.EverPublished)
	assert.Equal(t, artifact.StateArchived, snap.ArtifactStates["a1"])
}

func TestConcurrentConsentWrites(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewInMemoryStore()

	const users = 8
	const writesPerUser = 50

	g, gctx := errgroup.WithContext(ctx)
	for u := 0; u < users; u++ {
		userID := id.UserID(fmt.Sprintf("u%d", u))
		g.Go(func() error {
			for i := 0; i < writesPerUser; i++ {
				record := consent.ReceiptRecord{
					Receipt:   fmt.Sprintf("%s-r%d", userID, i),
					Timestamp: time.Now().UTC(),
				}
				state := consent.State{Extractive: i%2 == 0}
				if err := store.ReplaceConsent(gctx, userID, state, record); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	anchor, err := store.Anchor(ctx)
	require.NoError(t, err)
	assert.Len(t, anchor, users*writesPerUser)

	total := 0
	for u := 0; u < users; u++ {
		history, err := store.Receipts(ctx, id.UserID(fmt.Sprintf("u%d", u)))
		require.NoError(t, err)
		assert.Len(t, history, writesPerUser, "per-user history keeps write order intact")
		total += len(history)
	}
	assert.Equal(t, len(anchor), total, "anchor and histories never diverge")
}

func TestConcurrentIngestAndSnapshot(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewInMemoryStore()

	const ingests = 200

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < ingests; i++ {
		artifactID := id.ArtifactID(fmt.Sprintf("a%d", i))
		g.Go(func() error {
			return store.RecordExtractiveIngest(gctx, artifactID, "u1")
		})
	}
	g.Go(func() error {
		// Snapshots taken mid-write must still be internally consistent.
		for i := 0; i < 20; i++ {
			snap, err := store.Snapshot(gctx)
			if err != nil {
				return err
			}
			if len(snap.Attribution) > snap.ExtractiveIngests {
				return fmt.Errorf("attribution ran ahead of the ingest counter: %d > %d",
					len(snap.Attribution), snap.ExtractiveIngests)
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, ingests, snap.ExtractiveIngests)
	assert.Len(t, snap.Attribution, ingests)
	assert.Len(t, snap.ArtifactStates, ingests)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	ctx := context.Background()
	store := ledger.NewInMemoryStore()

	require.NoError(t, store.ReplaceConsent(ctx, "u1",
		consent.State{Extractive: true, Scope: []string{"research"}},
		consent.ReceiptRecord{Receipt: "r1"}))
	require.NoError(t, store.RecordExtractiveIngest(ctx, "a1", "u1"))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	snap.Consents["u1"].Scope[0] = "mutated"
	snap.Attribution["a1"][0] = "mallory"

	state, _, err := store.Consent(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "research", state.Scope[0])

	users, err := store.Attribution(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []id.UserID{"u1"}, users)
}
