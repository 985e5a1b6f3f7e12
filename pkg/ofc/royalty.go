package ofc

import (
	"pineapplepoker-server/pkg/game"
)

// bottom-row royalty points per category
var bottomRoyalties = map[Category]int{
	Straight:      2,
	Flush:         4,
	FullHouse:     6,
	FourOfAKind:   10,
	StraightFlush: 15,
	RoyalFlush:    25,
}

// middle-row royalty points per category. The middle row pays double the
// bottom row and additionally pays for trips.
var middleRoyalties = map[Category]int{
	ThreeOfAKind:  2,
	Straight:      4,
	Flush:         8,
	FullHouse:     12,
	FourOfAKind:   20,
	StraightFlush: 30,
	RoyalFlush:    50,
}

// BottomRoyalty returns the royalty points for a completed bottom row
func BottomRoyalty(eval Eval) int {
	return bottomRoyalties[eval.Category]
}

// MiddleRoyalty returns the royalty points for a completed middle row
func MiddleRoyalty(eval Eval) int {
	return middleRoyalties[eval.Category]
}

// TopRoyalty returns the royalty points for a completed top row.
// A pair of sixes pays 1, rising one point per rank to 9 for aces.
// Pairs below sixes pay nothing. Trips pay on every rank, with deuces
// paying 10 and aces paying 22.
func TopRoyalty(eval Eval) int {
	switch eval.Category {
	case ThreeOfAKind:
		return eval.Kickers[0] + 8
	case OnePair:
		if eval.Kickers[0] >= 6 {
			return eval.Kickers[0] - 5
		}
	}

	return 0
}

// Royalties returns the total royalty points for a board.
// Only complete, non-fouled boards earn royalties.
func Royalties(board *game.Board) int {
	if !board.IsComplete() || IsFouled(board) {
		return 0
	}

	total := BottomRoyalty(Evaluate(board.Bottom))
	total += MiddleRoyalty(Evaluate(board.Middle))
	total += TopRoyalty(Evaluate(board.Top))

	return total
}
