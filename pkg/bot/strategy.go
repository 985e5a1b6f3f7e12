// Package bot provides card-placement strategies for bot players.
package bot

import (
	"fmt"
	"sort"

	"pineapplepoker-server/pkg/deck"
	"pineapplepoker-server/pkg/game"
)

// Strategy chooses placements for a dealt hand.
// Implementations must be pure: the same board, hand, and street always
// yield the same choice, and neither input may be mutated.
type Strategy interface {
	// Place returns the placements and the discarded card (nil on street 1).
	// The returned placements must satisfy the street's placement count and
	// every target row must have capacity.
	Place(board *game.Board, hand []*deck.Card, street int) ([]game.Placement, *deck.Card)
}

// Greedy is a simple rank-driven strategy: high cards sink to the bottom
// row, low cards float to the top, and the lowest card of a 3-card street
// is discarded.
type Greedy struct{}

// Place implements Strategy
func (Greedy) Place(board *game.Board, hand []*deck.Card, street int) ([]game.Placement, *deck.Card) {
	sorted := make([]*deck.Card, len(hand))
	copy(sorted, hand)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rank > sorted[j].Rank
	})

	var discard *deck.Card
	if game.DiscardSize(street) > 0 {
		discard = sorted[len(sorted)-1]
		sorted = sorted[:len(sorted)-1]
	}

	if len(sorted) != game.PlaceSize(street) {
		panic(fmt.Sprintf("strategy needs %d cards to place on street %d, got %d",
			game.PlaceSize(street), street, len(sorted)))
	}

	capacity := map[game.Row]int{
		game.RowBottom: game.BottomSize - len(board.Bottom),
		game.RowMiddle: game.MiddleSize - len(board.Middle),
		game.RowTop:    game.TopSize - len(board.Top),
	}

	placements := make([]game.Placement, 0, len(sorted))
	for _, card := range sorted {
		for _, row := range []game.Row{game.RowBottom, game.RowMiddle, game.RowTop} {
			if capacity[row] > 0 {
				capacity[row]--
				placements = append(placements, game.Placement{Card: card, Row: row})
				break
			}
		}
	}

	if len(placements) != len(sorted) {
		panic("board cannot hold the required placements")
	}

	return placements, discard
}
