package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhase_Valid(t *testing.T) {
	assert.True(t, PhaseLobby.Valid())
	assert.True(t, PhaseMatchComplete.Valid())
	assert.False(t, Phase("street_6").Valid())
	assert.False(t, Phase("").Valid())
}

func TestPhase_IsPlacement(t *testing.T) {
	assert.True(t, PhaseInitialDeal.IsPlacement())
	assert.True(t, PhaseStreet2.IsPlacement())
	assert.True(t, PhaseStreet5.IsPlacement())
	assert.False(t, PhaseLobby.IsPlacement())
	assert.False(t, PhaseScoring.IsPlacement())
	assert.False(t, PhaseComplete.IsPlacement())
}

func TestPlacementPhase(t *testing.T) {
	assert.Equal(t, PhaseInitialDeal, PlacementPhase(1))
	assert.Equal(t, PhaseStreet2, PlacementPhase(2))
	assert.Equal(t, PhaseStreet5, PlacementPhase(5))
	assert.Panics(t, func() {
		PlacementPhase(0)
	})
	assert.Panics(t, func() {
		PlacementPhase(6)
	})
}

func TestDealSizes(t *testing.T) {
	assert.Equal(t, 5, DealSize(1))
	assert.Equal(t, 3, DealSize(2))
	assert.Equal(t, 5, PlaceSize(1))
	assert.Equal(t, 2, PlaceSize(4))
	assert.Equal(t, 0, DiscardSize(1))
	assert.Equal(t, 1, DiscardSize(5))
}
