package ofc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pineapplepoker-server/pkg/game"
)

func TestIsFouled(t *testing.T) {
	// incomplete boards are never fouled
	assert.False(t, IsFouled(testBoard("12h,5c,4d", "13d,13c,8s,7c,2d", "14h,14c,9s,8c")))

	// a properly ordered board
	assert.False(t, IsFouled(testBoard("12h,5c,4d", "13d,13c,8s,7c,2d", "14h,14c,9s,8c,3d")))

	// bottom strictly weaker than middle
	assert.True(t, IsFouled(testBoard("12h,5c,4d", "14h,14c,8s,7c,2d", "13d,13c,9s,8c,3d")))

	// middle weaker than top
	assert.True(t, IsFouled(testBoard("14h,14c,4d", "13d,13c,8s,7c,2d", "14d,14s,9s,8c,3d")))
}

func TestIsFouled_Strictness(t *testing.T) {
	// the middle pair of nines with a queen kicker exactly ties the top at
	// the compared length. A tie between middle and top is a foul.
	board := testBoard("9c,9d,12h", "9h,9s,12d,6c,3c", "14c,14d,14s,13c,13h")
	assert.True(t, IsFouled(board))

	// one rank higher in the middle and the board is safe
	board = testBoard("9c,9d,12h", "10h,10s,12d,6c,3c", "14c,14d,14s,13c,13h")
	assert.False(t, IsFouled(board))

	// a bottom that exactly ties the middle is not a foul; only the
	// middle/top comparison is strict
	board = testBoard("12h,5c,4d", "13d,13c,8s,7c,2d", "13h,13s,8c,7d,2s")
	assert.False(t, IsFouled(board))
}

func TestScorePairwise(t *testing.T) {
	// A wins all three rows with no royalties on either side
	a := testBoard("12h,5c,4d", "13d,13c,8s,7c,2d", "14h,14c,9s,8c,3d")
	b := testBoard("11h,5d,4c", "12d,12c,8h,7d,2s", "13h,13s,9d,8d,3c")

	result := ScorePairwise(a, b, false, false)
	assert.Equal(t, 3, result.RowPoints)
	assert.Equal(t, ScoopBonus, result.ScoopBonus)
	assert.Equal(t, 0, result.RoyaltyDiff)
	assert.Equal(t, 6, result.Total)

	// mirror image
	mirror := ScorePairwise(b, a, false, false)
	assert.Equal(t, -result.Total, mirror.Total)
	assert.Equal(t, -result.RowPoints, mirror.RowPoints)
	assert.Equal(t, -result.ScoopBonus, mirror.ScoopBonus)
}

func TestScorePairwise_SplitRows(t *testing.T) {
	// A wins bottom and middle, B wins top: no scoop
	a := testBoard("10h,5c,4d", "13d,13c,8s,7c,2d", "14h,14c,9s,8c,3d")
	b := testBoard("11h,5d,4c", "12d,12c,8h,7d,2s", "13h,13s,9d,8d,3c")

	result := ScorePairwise(a, b, false, false)
	assert.Equal(t, 1, result.RowPoints)
	assert.Equal(t, 0, result.ScoopBonus)
	assert.Equal(t, 1, result.Total)
}

func TestScorePairwise_Royalties(t *testing.T) {
	// A has a flush on the bottom (4 points)
	a := testBoard("12h,5c,4d", "13d,13c,8s,7c,2d", "14h,11h,9h,8h,3h")
	b := testBoard("11h,5d,4c", "12d,12c,8h,7d,2s", "13h,13s,9d,8d,3c")

	result := ScorePairwise(a, b, false, false)
	assert.Equal(t, 3, result.RowPoints)
	assert.Equal(t, ScoopBonus, result.ScoopBonus)
	assert.Equal(t, 4, result.RoyaltyDiff)
	assert.Equal(t, 10, result.Total)
}

func TestScorePairwise_Fouls(t *testing.T) {
	strong := testBoard("12h,5c,4d", "13d,13c,8s,7c,2d", "14h,11h,9h,8h,3h")
	weak := testBoard("11h,5d,4c", "12d,12c,8h,7d,2s", "13h,13s,9d,8d,3c")

	// both fouled: a push
	result := ScorePairwise(strong, weak, true, true)
	assert.Equal(t, PairwiseResult{}, result)

	// B fouled: A collects the penalty plus its own royalties (flush = 4)
	result = ScorePairwise(strong, weak, false, true)
	assert.Equal(t, FoulPenalty, result.FoulBonus)
	assert.Equal(t, 4, result.RoyaltyDiff)
	assert.Equal(t, 0, result.RowPoints)
	assert.Equal(t, 10, result.Total)

	// A fouled: the exact negation
	mirror := ScorePairwise(weak, strong, true, false)
	assert.Equal(t, -result.Total, mirror.Total)
	assert.Equal(t, -result.FoulBonus, mirror.FoulBonus)
	assert.Equal(t, -result.RoyaltyDiff, mirror.RoyaltyDiff)
}

func TestScoreRound_ZeroSum(t *testing.T) {
	players := map[string]*game.Player{
		"a": {UID: "a", Board: testBoard("12h,5c,4d", "13d,13c,8s,7c,2d", "14h,11h,9h,8h,3h")},
		"b": {UID: "b", Board: testBoard("11h,5d,4c", "12d,12c,8h,7d,2s", "13h,13s,9d,8d,3c")},
		// naturally fouled: middle beats bottom
		"c": {UID: "c", Board: testBoard("12h,5c,4d", "14h,14c,8s,7c,2d", "13d,13c,9s,8c,3d")},
		// incomplete board at scoring time counts as a foul
		"d": {UID: "d", Board: testBoard("12h,5c", "13d,13c,8s,7c,2d", "14h,14c,9s,8c,3d")},
	}

	results := ScoreRound(players, []string{"a", "b", "c", "d"})
	assert.Len(t, results, 4)
	assert.False(t, results["a"].Fouled)
	assert.False(t, results["b"].Fouled)
	assert.True(t, results["c"].Fouled)
	assert.True(t, results["d"].Fouled)

	sum := 0
	for _, result := range results {
		sum += result.Points
	}
	assert.Equal(t, 0, sum)
}

func TestScoreRound_StoredFoulFlag(t *testing.T) {
	players := map[string]*game.Player{
		"a": {UID: "a", Board: testBoard("12h,5c,4d", "13d,13c,8s,7c,2d", "14h,14c,9s,8c,3d")},
		"b": {
			UID:    "b",
			Board:  testBoard("11h,5d,4c", "12d,12c,8h,7d,2s", "13h,13s,9d,8d,3c"),
			Fouled: true,
		},
	}

	results := ScoreRound(players, []string{"a", "b"})
	assert.True(t, results["b"].Fouled)
	assert.Equal(t, FoulPenalty, results["a"].Points)
	assert.Equal(t, -FoulPenalty, results["b"].Points)
}

func TestScoreRound_TwoPlayers(t *testing.T) {
	// pair of aces bottom, pair of kings middle, queen-high top against a
	// strictly weaker board: +3 rows, +3 scoop, no royalties
	players := map[string]*game.Player{
		"a": {UID: "a", Board: testBoard("12h,5c,4d", "13d,13c,8s,7c,2d", "14h,14c,9s,8c,3d")},
		"b": {UID: "b", Board: testBoard("11h,5d,4c", "12d,12c,8h,7d,2s", "13h,13s,9d,8d,3c")},
	}

	results := ScoreRound(players, []string{"a", "b"})
	assert.Equal(t, 6, results["a"].Points)
	assert.Equal(t, -6, results["b"].Points)
}
