// Package ofc implements hand evaluation and scoring for Open-Face Chinese
// "Pineapple" poker boards.
package ofc

import (
	"fmt"
	"sort"

	"pineapplepoker-server/pkg/deck"
)

// Category is a poker hand category, i.e., royal flush
type Category int

// Constants for category
const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the string representation of a category
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High card"
	case OnePair:
		return "Pair"
	case TwoPair:
		return "Two pair"
	case ThreeOfAKind:
		return "Three of a kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full house"
	case FourOfAKind:
		return "Four of a kind"
	case StraightFlush:
		return "Straight flush"
	case RoyalFlush:
		return "Royal flush"
	default:
		panic(fmt.Sprintf("unknown category: %d", c))
	}
}

// Eval is an evaluated hand: a category plus the kickers used to break ties
// within the same category, most significant first.
type Eval struct {
	Category Category
	Kickers  []int
}

// Evaluate scores a 3-card or 5-card hand.
// Any other card count is a programming error and panics.
// A 3-card hand only forms a high card, pair, or three of a kind; its
// categories land directly on the shared scale so rows compare without a
// mapping step.
func Evaluate(cards []*deck.Card) Eval {
	switch len(cards) {
	case 3:
		return evaluateThree(cards)
	case 5:
		return evaluateFive(cards)
	}

	panic(fmt.Sprintf("cannot evaluate a %d-card hand", len(cards)))
}

// Compare returns a positive number if a beats b, a negative number if b
// beats a, and 0 on an exact tie. A higher category always wins; within a
// category the kickers are compared most significant first.
func Compare(a, b Eval) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}

	n := len(a.Kickers)
	if len(b.Kickers) < n {
		n = len(b.Kickers)
	}

	for i := 0; i < n; i++ {
		if a.Kickers[i] != b.Kickers[i] {
			return a.Kickers[i] - b.Kickers[i]
		}
	}

	return 0
}

type rankGroup struct {
	rank  int
	count int
}

// groupRanks returns rank groups sorted by count descending, then rank descending
func groupRanks(cards []*deck.Card) []rankGroup {
	counts := make(map[int]int)
	for _, card := range cards {
		counts[card.Rank]++
	}

	groups := make([]rankGroup, 0, len(counts))
	for rank, count := range counts {
		groups = append(groups, rankGroup{rank: rank, count: count})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}

		return groups[i].rank > groups[j].rank
	})

	return groups
}

func ranksDescending(cards []*deck.Card) []int {
	ranks := make([]int, len(cards))
	for i, card := range cards {
		ranks[i] = card.Rank
	}

	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
	return ranks
}

// straightHigh returns the high card of a straight, or 0 if the five cards
// do not form one. The wheel (A-2-3-4-5) is a 5-high straight.
func straightHigh(ranks []int) int {
	for i := 1; i < len(ranks); i++ {
		if ranks[i-1] == ranks[i] {
			return 0
		}
	}

	if ranks[0]-ranks[4] == 4 {
		return ranks[0]
	}

	// the wheel: ace plays low beneath 5-4-3-2
	if ranks[0] == deck.Ace && ranks[1] == 5 && ranks[4] == 2 {
		return 5
	}

	return 0
}

func isFlush(cards []*deck.Card) bool {
	suit := cards[0].Suit
	for _, card := range cards[1:] {
		if card.Suit != suit {
			return false
		}
	}

	return true
}

func evaluateFive(cards []*deck.Card) Eval {
	ranks := ranksDescending(cards)
	groups := groupRanks(cards)
	flush := isFlush(cards)
	straight := straightHigh(ranks)

	if flush && straight > 0 {
		if straight == deck.Ace {
			return Eval{Category: RoyalFlush, Kickers: []int{straight}}
		}

		return Eval{Category: StraightFlush, Kickers: []int{straight}}
	}

	if groups[0].count == 4 {
		return Eval{Category: FourOfAKind, Kickers: []int{groups[0].rank, groups[1].rank}}
	}

	if groups[0].count == 3 && groups[1].count == 2 {
		return Eval{Category: FullHouse, Kickers: []int{groups[0].rank, groups[1].rank}}
	}

	if flush {
		return Eval{Category: Flush, Kickers: ranks}
	}

	if straight > 0 {
		return Eval{Category: Straight, Kickers: []int{straight}}
	}

	if groups[0].count == 3 {
		return Eval{Category: ThreeOfAKind, Kickers: []int{groups[0].rank, groups[1].rank, groups[2].rank}}
	}

	if groups[0].count == 2 && groups[1].count == 2 {
		return Eval{Category: TwoPair, Kickers: []int{groups[0].rank, groups[1].rank, groups[2].rank}}
	}

	if groups[0].count == 2 {
		return Eval{
			Category: OnePair,
			Kickers:  []int{groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank},
		}
	}

	return Eval{Category: HighCard, Kickers: ranks}
}

func evaluateThree(cards []*deck.Card) Eval {
	groups := groupRanks(cards)

	if groups[0].count == 3 {
		return Eval{Category: ThreeOfAKind, Kickers: []int{groups[0].rank}}
	}

	if groups[0].count == 2 {
		return Eval{Category: OnePair, Kickers: []int{groups[0].rank, groups[1].rank}}
	}

	return Eval{Category: HighCard, Kickers: ranksDescending(cards)}
}
