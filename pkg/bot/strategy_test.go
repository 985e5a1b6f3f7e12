package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pineapplepoker-server/pkg/deck"
	"pineapplepoker-server/pkg/game"
)

func TestGreedy_InitialStreet(t *testing.T) {
	board := game.NewBoard()
	hand := deck.CardsFromString("2c,14s,9d,13h,5c")

	placements, discard := Greedy{}.Place(board, hand, 1)
	require.Len(t, placements, 5)
	assert.Nil(t, discard)

	// high cards fill the bottom first
	assert.Equal(t, game.RowBottom, placements[0].Row)
	assert.Equal(t, 14, placements[0].Card.Rank)
	assert.Equal(t, game.RowBottom, placements[4].Row)
	assert.Equal(t, 2, placements[4].Card.Rank)

	// the hand is not mutated
	assert.Equal(t, "2c,14s,9d,13h,5c", deck.CardsToString(hand))
}

func TestGreedy_LaterStreet(t *testing.T) {
	board := game.NewBoard()
	board.Bottom = deck.CardsFromString("14c,13c,12c,11c,10c")
	board.Middle = deck.CardsFromString("9c,8c")

	placements, discard := Greedy{}.Place(board, deck.CardsFromString("3d,12h,7s"), 2)
	require.Len(t, placements, 2)
	require.NotNil(t, discard)

	// the lowest card is discarded
	assert.Equal(t, 3, discard.Rank)

	// the bottom is full, so cards land in the middle
	assert.Equal(t, game.RowMiddle, placements[0].Row)
	assert.Equal(t, 12, placements[0].Card.Rank)
	assert.Equal(t, game.RowMiddle, placements[1].Row)
}

func TestGreedy_SpillsToTop(t *testing.T) {
	board := game.NewBoard()
	board.Bottom = deck.CardsFromString("14c,13c,12c,11c,10c")
	board.Middle = deck.CardsFromString("9c,8c,7c,6c")

	placements, discard := Greedy{}.Place(board, deck.CardsFromString("3d,12h,7s"), 4)
	require.Len(t, placements, 2)
	assert.Equal(t, 3, discard.Rank)
	assert.Equal(t, game.RowMiddle, placements[0].Row)
	assert.Equal(t, game.RowTop, placements[1].Row)
}

func TestGreedy_Deterministic(t *testing.T) {
	board := game.NewBoard()
	hand := deck.CardsFromString("2c,14s,9d,13h,5c")

	first, _ := Greedy{}.Place(board, hand, 1)
	second, _ := Greedy{}.Place(board, hand, 1)
	assert.Equal(t, first, second)
}
