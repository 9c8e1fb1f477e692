package auditreport_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reciprocity/internal/artifact"
	"reciprocity/internal/auditreport"
	"reciprocity/internal/consent"
	"reciprocity/internal/ingest"
	"reciprocity/internal/ledger"
	id "reciprocity/pkg/domain"
)

type fixture struct {
	store     *ledger.InMemoryStore
	consents  *consent.Ledger
	gate      *ingest.Gate
	lifecycle *artifact.Lifecycle
	auditor   *auditreport.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := ledger.NewInMemoryStore()
	consents := consent.NewLedger(store, nil, nil, nil)
	return &fixture{
		store:     store,
		consents:  consents,
		gate:      ingest.NewGate(consents, store, nil, nil),
		lifecycle: artifact.NewLifecycle(store, nil, nil),
		auditor:   auditreport.NewEngine(store, nil),
	}
}

func (f *fixture) mustIngest(t *testing.T, ctx context.Context, userID id.UserID) id.ArtifactID {
	t.Helper()
	result, err := f.gate.Ingest(ctx, userID, []byte("payload"), true, nil)
	require.NoError(t, err)
	return result.ArtifactID
}

func TestAuditEmptyLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	report, err := f.auditor.Audit(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.RIM1)
	assert.Equal(t, 0.0, report.RIM2)
	assert.Equal(t, 1.0, report.RIM3, "no reuse evidence counts as fully disclosed")
	assert.Equal(t, 0.0, report.RIM4)
	assert.Equal(t, 0.0, report.RIM5)
	assert.Equal(t, 0.0, report.RIM6)

	assert.Zero(t, report.TotalUsers)
	assert.Zero(t, report.TotalReceiptsIssued)
	assert.Zero(t, report.AnchoredReceipts)
	assert.Equal(t, map[string]int{
		"generated": 0,
		"used":      0,
		"published": 0,
		"archived":  0,
	}, report.ArtifactStates)
}

func TestAuditConsentRatios(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Four users: two active (one expiry-bound and scoped), one opted out,
	// one expired.
	_, err := f.consents.Set(ctx, "u1", true, "", nil)
	require.NoError(t, err)
	_, err = f.consents.Set(ctx, "u2", true, "2099-01-01", []string{"research"})
	require.NoError(t, err)
	require.NoError(t, f.consents.Register(ctx, "u3"))
	_, err = f.consents.Set(ctx, "u4", true, "2001-01-01", []string{"research"})
	require.NoError(t, err)

	report, err := f.auditor.Audit(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalUsers)
	assert.Equal(t, 2, report.ActiveConsentingUsers)
	assert.Equal(t, 0.5, report.RIM1)
	assert.Equal(t, 0.5, report.RIM4, "one of two active users has an expiry")
	assert.Equal(t, 0.5, report.RIM5, "one of two active users scoped their consent")
	assert.Equal(t, 3, report.TotalReceiptsIssued, "registration alone issues no receipt")
	assert.Equal(t, report.TotalReceiptsIssued, report.AnchoredReceipts)
}

func TestAuditPublicationAndAttribution(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.consents.Set(ctx, "u1", true, "", nil)
	require.NoError(t, err)

	// Three admitted extractive ingestions; two artifacts reach published,
	// one of those is archived afterwards.
	a1 := f.mustIngest(t, ctx, "u1")
	a2 := f.mustIngest(t, ctx, "u1")
	f.mustIngest(t, ctx, "u1")

	for _, artifactID := range []id.ArtifactID{a1, a2} {
		require.NoError(t, f.lifecycle.Transition(ctx, artifactID, artifact.StateUsed))
		require.NoError(t, f.lifecycle.Transition(ctx, artifactID, artifact.StatePublished))
	}
	require.NoError(t, f.lifecycle.Transition(ctx, a1, artifact.StateArchived))

	report, err := f.auditor.Audit(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.ExtractiveIngests)
	assert.Equal(t, 3, report.AttributedArtifacts)
	assert.Equal(t, 1.0, report.RIM2)
	assert.Equal(t, 2, report.EverPublishedArtifacts, "archival does not undo publication")
	assert.Equal(t, 0.6667, report.RIM6)
	assert.Equal(t, map[string]int{
		"generated": 1,
		"used":      0,
		"published": 1,
		"archived":  1,
	}, report.ArtifactStates)
}

func TestAuditDisclosureRate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.consents.Set(ctx, "u1", true, "", nil)
	require.NoError(t, err)
	artifactID := f.mustIngest(t, ctx, "u1")

	require.NoError(t, f.lifecycle.LogReuse(ctx, artifactID, true))
	require.NoError(t, f.lifecycle.LogReuse(ctx, artifactID, true))
	require.NoError(t, f.lifecycle.LogReuse(ctx, artifactID, true))
	require.NoError(t, f.lifecycle.LogReuse(ctx, artifactID, false))

	report, err := f.auditor.Audit(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalReuses)
	assert.Equal(t, 1, report.SilentReuses)
	assert.Equal(t, 0.75, report.RIM3)
}

func TestAuditIsReadOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.consents.Set(ctx, "u1", true, "2099-01-01", []string{"research"})
	require.NoError(t, err)
	artifactID := f.mustIngest(t, ctx, "u1")
	require.NoError(t, f.lifecycle.LogReuse(ctx, artifactID, false))

	first, err := f.auditor.Audit(ctx)
	require.NoError(t, err)
	second, err := f.auditor.Audit(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second, "back-to-back audits over unchanged state agree")
}
