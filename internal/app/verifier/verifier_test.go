package verifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxhuntgame/foxhunt/internal/domain/location"
	"github.com/foxhuntgame/foxhunt/internal/domain/points"
	"github.com/foxhuntgame/foxhunt/internal/domain/profile"
	"github.com/foxhuntgame/foxhunt/internal/domain/selection"
	"github.com/foxhuntgame/foxhunt/internal/domain/shared"
	"github.com/foxhuntgame/foxhunt/pkg/logger"
	"github.com/foxhuntgame/foxhunt/pkg/token"
)

type fixture struct {
	verifier  *Verifier
	profiles  *profile.MemoryRepository
	locations *location.Store
	holder    *selection.Holder
}

func newFixture() *fixture {
	log := logger.NewDefault()
	profiles := profile.NewMemoryRepository()
	locations := location.NewStore()
	holder := selection.NewHolder()
	ledger := points.NewLedger(points.NewMemoryRepository(), log)
	tokens := token.NewService("test-secret-key", "foxhunt")

	return &fixture{
		verifier:  New(profiles, locations, holder, ledger, tokens, 100, time.Second, log),
		profiles:  profiles,
		locations: locations,
		holder:    holder,
	}
}

func (f *fixture) selectTargets(teamA, teamB string) {
	sel := selection.Selection{SelectedAt: time.Now()}
	if teamA != "" {
		id := shared.PlayerID(teamA)
		sel.TeamA = &id
	}
	if teamB != "" {
		id := shared.PlayerID(teamB)
		sel.TeamB = &id
	}
	f.holder.Replace(sel)
}

func TestVerifyProximity_WithinThreshold(t *testing.T) {
	f := newFixture()
	f.locations.Update("p1", location.Fix{Lat: 0, Lon: 0, Timestamp: 1})
	f.locations.Update("p2", location.Fix{Lat: 0, Lon: 0.0005, Timestamp: 2})

	result, err := f.verifier.VerifyProximity(context.Background(), "p1", "p2")
	require.NoError(t, err)

	assert.True(t, result.Verified)
	assert.InDelta(t, 55.6, result.Distance, 1.0)
	assert.Equal(t, 100.0, result.Threshold)
}

func TestVerifyProximity_BeyondThreshold(t *testing.T) {
	f := newFixture()
	f.locations.Update("p1", location.Fix{Lat: 0, Lon: 0, Timestamp: 1})
	f.locations.Update("p2", location.Fix{Lat: 0, Lon: 0.01, Timestamp: 2})

	result, err := f.verifier.VerifyProximity(context.Background(), "p1", "p2")
	require.NoError(t, err)

	assert.False(t, result.Verified)
	assert.InDelta(t, 1113.0, result.Distance, 2.0)
	assert.Equal(t, 100.0, result.Threshold)
}

func TestVerifyProximity_MissingLocationIsNotFound(t *testing.T) {
	f := newFixture()
	f.locations.Update("p1", location.Fix{Lat: 0, Lon: 0, Timestamp: 1})

	_, err := f.verifier.VerifyProximity(context.Background(), "p1", "ghost")
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.Kind(err))

	_, err = f.verifier.VerifyProximity(context.Background(), "ghost", "p1")
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.Kind(err))
}

func TestConfirmScan_BasicGrant(t *testing.T) {
	f := newFixture()
	f.profiles.Put(profile.Profile{ID: "p1", Category: shared.CategoryA})
	f.profiles.Put(profile.Profile{ID: "p2", Category: shared.CategoryB})
	f.selectTargets("", "p2")

	result, err := f.verifier.ConfirmScan(context.Background(), "p1", "p2")
	require.NoError(t, err)

	assert.True(t, result.Granted)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, shared.PlayerID("p2"), result.TargetID)
}

func TestConfirmScan_DuplicateRedemption(t *testing.T) {
	f := newFixture()
	f.profiles.Put(profile.Profile{ID: "p1", Category: shared.CategoryA})
	f.selectTargets("", "p2")

	first, err := f.verifier.ConfirmScan(context.Background(), "p1", "p2")
	require.NoError(t, err)
	require.True(t, first.Granted)

	second, err := f.verifier.ConfirmScan(context.Background(), "p1", "p2")
	require.NoError(t, err)

	assert.False(t, second.Granted)
	assert.Equal(t, RejectionDuplicate, second.Rejection)
	assert.Equal(t, 1, second.Total)
}

func TestConfirmScan_WrongTarget(t *testing.T) {
	f := newFixture()
	f.profiles.Put(profile.Profile{ID: "p1", Category: shared.CategoryA})
	f.selectTargets("", "p2")

	result, err := f.verifier.ConfirmScan(context.Background(), "p1", "p3")
	require.NoError(t, err)

	assert.False(t, result.Granted)
	assert.Equal(t, RejectionWrongTarget, result.Rejection)
	require.NotNil(t, result.ExpectedTarget)
	assert.Equal(t, shared.PlayerID("p2"), *result.ExpectedTarget)
}

func TestConfirmScan_NoTargetSelected(t *testing.T) {
	f := newFixture()
	f.profiles.Put(profile.Profile{ID: "p1", Category: shared.CategoryA})

	result, err := f.verifier.ConfirmScan(context.Background(), "p1", "p2")
	require.NoError(t, err)

	assert.False(t, result.Granted)
	assert.Equal(t, RejectionNoTarget, result.Rejection)
}

func TestConfirmScan_UnknownScannerIsNotFound(t *testing.T) {
	f := newFixture()
	f.selectTargets("", "p2")

	_, err := f.verifier.ConfirmScan(context.Background(), "ghost", "p2")
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.Kind(err))
}

func TestConfirmScan_SignedBadgeToken(t *testing.T) {
	f := newFixture()
	f.profiles.Put(profile.Profile{ID: "p1", Category: shared.CategoryA})
	f.selectTargets("", "p2")

	minter := token.NewService("test-secret-key", "foxhunt")
	badge, err := minter.Mint("p2")
	require.NoError(t, err)

	result, err := f.verifier.ConfirmScan(context.Background(), "p1", badge)
	require.NoError(t, err)
	assert.True(t, result.Granted)
}

func TestConfirmScan_ForgedBadgeIsInvalidInput(t *testing.T) {
	f := newFixture()
	f.profiles.Put(profile.Profile{ID: "p1", Category: shared.CategoryA})
	f.selectTargets("", "p2")

	forger := token.NewService("wrong-secret-key", "foxhunt")
	badge, err := forger.Mint("p2")
	require.NoError(t, err)

	_, err = f.verifier.ConfirmScan(context.Background(), "p1", badge)
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidInput, shared.Kind(err))
}

func TestTargetLookup_ResolvesChain(t *testing.T) {
	f := newFixture()
	f.profiles.Put(profile.Profile{ID: "p1", Category: shared.CategoryA})
	f.selectTargets("", "p2")
	f.locations.Update("p2", location.Fix{Lat: 52.5, Lon: 13.4, Timestamp: 100})

	info, err := f.verifier.TargetLookup(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, shared.CategoryA, info.Category)
	assert.Equal(t, shared.CategoryB, info.TargetCategory)
	assert.Equal(t, shared.PlayerID("p2"), info.TargetID)
	assert.Equal(t, 52.5, info.Fix.Lat)
}

func TestTargetLookup_MissingLinksAreNotFound(t *testing.T) {
	f := newFixture()

	// No profile
	_, err := f.verifier.TargetLookup(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.Kind(err))

	// Profile but no selection
	f.profiles.Put(profile.Profile{ID: "p1", Category: shared.CategoryA})
	_, err = f.verifier.TargetLookup(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.Kind(err))

	// Selection but no target location
	f.selectTargets("", "p2")
	_, err = f.verifier.TargetLookup(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.Kind(err))
}
