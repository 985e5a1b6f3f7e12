package ofc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pineapplepoker-server/pkg/deck"
)

func TestEvaluate_FiveCardCategories(t *testing.T) {
	tests := []struct {
		cards    string
		category Category
		kickers  []int
	}{
		{"14s,13s,12s,11s,10s", RoyalFlush, []int{14}},
		{"9h,8h,7h,6h,5h", StraightFlush, []int{9}},
		{"5c,5d,5h,5s,9c", FourOfAKind, []int{5, 9}},
		{"5c,5d,5h,9s,9c", FullHouse, []int{5, 9}},
		{"14c,11c,9c,6c,2c", Flush, []int{14, 11, 9, 6, 2}},
		{"10c,9d,8h,7s,6c", Straight, []int{10}},
		{"7c,7d,7h,13s,2c", ThreeOfAKind, []int{7, 13, 2}},
		{"12c,12d,4h,4s,9c", TwoPair, []int{12, 4, 9}},
		{"8c,8d,14h,6s,3c", OnePair, []int{8, 14, 6, 3}},
		{"13c,10d,8h,5s,2c", HighCard, []int{13, 10, 8, 5, 2}},
	}

	for _, test := range tests {
		eval := Evaluate(deck.CardsFromString(test.cards))
		assert.Equal(t, test.category, eval.Category, test.cards)
		assert.Equal(t, test.kickers, eval.Kickers, test.cards)
	}
}

func TestEvaluate_Wheel(t *testing.T) {
	// the wheel is a 5-high straight flush, never ace-high
	eval := Evaluate(deck.CardsFromString("14s,2s,3s,4s,5s"))
	assert.Equal(t, StraightFlush, eval.Category)
	assert.Equal(t, []int{5}, eval.Kickers)

	eval = Evaluate(deck.CardsFromString("14s,2c,3s,4s,5s"))
	assert.Equal(t, Straight, eval.Category)
	assert.Equal(t, []int{5}, eval.Kickers)

	// a six-high straight beats the wheel
	sixHigh := Evaluate(deck.CardsFromString("6c,5d,4h,3s,2c"))
	wheel := Evaluate(deck.CardsFromString("14s,2c,3s,4s,5d"))
	assert.Greater(t, Compare(sixHigh, wheel), 0)
}

func TestEvaluate_NotAStraight(t *testing.T) {
	// a pair breaks a straight
	eval := Evaluate(deck.CardsFromString("6c,6d,5h,4s,3c"))
	assert.Equal(t, OnePair, eval.Category)

	// ace cannot wrap around
	eval = Evaluate(deck.CardsFromString("14c,13d,2h,3s,4c"))
	assert.Equal(t, HighCard, eval.Category)
}

func TestEvaluate_ThreeCard(t *testing.T) {
	eval := Evaluate(deck.CardsFromString("9c,9d,9h"))
	assert.Equal(t, ThreeOfAKind, eval.Category)
	assert.Equal(t, []int{9}, eval.Kickers)

	eval = Evaluate(deck.CardsFromString("9c,9d,14h"))
	assert.Equal(t, OnePair, eval.Category)
	assert.Equal(t, []int{9, 14}, eval.Kickers)

	// no straights or flushes in a 3-card row
	eval = Evaluate(deck.CardsFromString("5c,6c,7c"))
	assert.Equal(t, HighCard, eval.Category)
	assert.Equal(t, []int{7, 6, 5}, eval.Kickers)
}

func TestEvaluate_BadCardCount(t *testing.T) {
	assert.Panics(t, func() {
		Evaluate(deck.CardsFromString("2c,3c,4c,5c"))
	})
	assert.Panics(t, func() {
		Evaluate(nil)
	})
}

func TestCompare(t *testing.T) {
	pairOfNines := Evaluate(deck.CardsFromString("9c,9d,14h,6s,3c"))
	pairOfEights := Evaluate(deck.CardsFromString("8c,8d,14h,6s,3c"))
	assert.Greater(t, Compare(pairOfNines, pairOfEights), 0)
	assert.Less(t, Compare(pairOfEights, pairOfNines), 0)

	// category beats kickers
	trips := Evaluate(deck.CardsFromString("2c,2d,2h,3s,4c"))
	assert.Greater(t, Compare(trips, pairOfNines), 0)

	// kicker depth matters
	goodKicker := Evaluate(deck.CardsFromString("8c,8d,14h,6s,3c"))
	badKicker := Evaluate(deck.CardsFromString("8h,8s,14d,6c,2c"))
	assert.Greater(t, Compare(goodKicker, badKicker), 0)

	// exact tie
	a := Evaluate(deck.CardsFromString("8c,8d,14h,6s,3c"))
	b := Evaluate(deck.CardsFromString("8h,8s,14d,6c,3d"))
	assert.Equal(t, 0, Compare(a, b))
}

func TestCompare_ThreeCardVersusFiveCard(t *testing.T) {
	// a 3-card pair ties a 5-card pair of the same rank and kicker prefix
	top := Evaluate(deck.CardsFromString("9c,9d,14h"))
	middle := Evaluate(deck.CardsFromString("9h,9s,14d,6c,3c"))
	assert.Equal(t, 0, Compare(top, middle))

	// a 5-card two pair beats a 3-card pair
	twoPair := Evaluate(deck.CardsFromString("9h,9s,6c,6d,3c"))
	assert.Less(t, Compare(top, twoPair), 0)
}
