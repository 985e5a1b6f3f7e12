package ofc

import (
	"pineapplepoker-server/pkg/game"
)

// scoring constants
const (
	// FoulPenalty is the fixed bonus paid to the non-fouled side of a pairing
	FoulPenalty = 6

	// ScoopBonus is the fixed bonus for winning all three rows
	ScoopBonus = 3
)

// foulAwardsRoyalties selects the rule variant for a one-sided foul: when
// true, the non-fouled player collects their own royalty total on top of
// the foul penalty. This follows the canonical rule set.
const foulAwardsRoyalties = true

// IsFouled reports whether a completed board violates the required strength
// ordering. A board with any incomplete row is never fouled: the round is
// still in progress.
//
// The middle row must be strictly stronger than the top row; an exact tie
// there is a foul. The bottom row only fouls when it is strictly weaker
// than the middle row.
func IsFouled(board *game.Board) bool {
	if !board.IsComplete() {
		return false
	}

	bottom := Evaluate(board.Bottom)
	middle := Evaluate(board.Middle)
	top := Evaluate(board.Top)

	if Compare(bottom, middle) < 0 {
		return true
	}

	return Compare(middle, top) <= 0
}

// PairwiseResult is the outcome of scoring board A against board B.
// Total is from A's perspective; B's total is the exact negation.
type PairwiseResult struct {
	RowPoints   int `json:"rowPoints"`
	ScoopBonus  int `json:"scoopBonus"`
	RoyaltyDiff int `json:"royaltyDiff"`
	FoulBonus   int `json:"foulBonus"`
	Total       int `json:"total"`
}

// ScorePairwise scores two boards head to head.
// The fouled flags are the effective flags (stored or natural); callers are
// expected to have folded a natural foul into them already.
func ScorePairwise(a, b *game.Board, aFouled, bFouled bool) PairwiseResult {
	if aFouled && bFouled {
		return PairwiseResult{}
	}

	if aFouled || bFouled {
		winner := a
		if aFouled {
			winner = b
		}

		result := PairwiseResult{FoulBonus: FoulPenalty}
		if foulAwardsRoyalties {
			result.RoyaltyDiff = Royalties(winner)
		}

		result.Total = result.FoulBonus + result.RoyaltyDiff
		if aFouled {
			result.RoyaltyDiff = -result.RoyaltyDiff
			result.FoulBonus = -result.FoulBonus
			result.Total = -result.Total
		}

		return result
	}

	var result PairwiseResult
	wins := 0
	losses := 0

	for _, row := range []game.Row{game.RowTop, game.RowMiddle, game.RowBottom} {
		cmp := Compare(Evaluate(a.Cards(row)), Evaluate(b.Cards(row)))
		switch {
		case cmp > 0:
			result.RowPoints++
			wins++
		case cmp < 0:
			result.RowPoints--
			losses++
		}
	}

	if wins == 3 {
		result.ScoopBonus = ScoopBonus
	} else if losses == 3 {
		result.ScoopBonus = -ScoopBonus
	}

	result.RoyaltyDiff = Royalties(a) - Royalties(b)
	result.Total = result.RowPoints + result.ScoopBonus + result.RoyaltyDiff

	return result
}

// ScoreRound runs pairwise scoring for every unordered pair of ordered
// players and returns each player's net result. The returned totals always
// sum to exactly zero.
//
// A player's effective foul is their stored flag, a naturally fouled board,
// or an incomplete board at scoring time.
func ScoreRound(players map[string]*game.Player, order []string) map[string]*game.RoundResult {
	results := make(map[string]*game.RoundResult, len(order))
	fouled := make(map[string]bool, len(order))

	for _, uid := range order {
		player, ok := players[uid]
		if !ok {
			continue
		}

		fouled[uid] = player.Fouled || !player.Board.IsComplete() || IsFouled(player.Board)
		results[uid] = &game.RoundResult{Fouled: fouled[uid]}
	}

	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			a, aOK := players[order[i]]
			b, bOK := players[order[j]]
			if !aOK || !bOK {
				continue
			}

			pairwise := ScorePairwise(a.Board, b.Board, fouled[a.UID], fouled[b.UID])
			results[a.UID].Points += pairwise.Total
			results[b.UID].Points -= pairwise.Total
		}
	}

	return results
}
