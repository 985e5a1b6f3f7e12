package game

import (
	"errors"
	"fmt"

	"pineapplepoker-server/pkg/deck"
)

// ErrRowFull is an error when a card is placed on a row at capacity
var ErrRowFull = errors.New("row is full")

// Row identifies one of the three board rows
type Row string

// row constants
const (
	RowTop    Row = "top"
	RowMiddle Row = "middle"
	RowBottom Row = "bottom"
)

// row sizes
const (
	TopSize    = 3
	MiddleSize = 5
	BottomSize = 5
)

// Board is a player's three-row board
type Board struct {
	Top    []*deck.Card `json:"top"`
	Middle []*deck.Card `json:"middle"`
	Bottom []*deck.Card `json:"bottom"`
}

// NewBoard returns an empty board
func NewBoard() *Board {
	return &Board{
		Top:    make([]*deck.Card, 0, TopSize),
		Middle: make([]*deck.Card, 0, MiddleSize),
		Bottom: make([]*deck.Card, 0, BottomSize),
	}
}

// Valid returns true if the row is one of the three known rows
func (r Row) Valid() bool {
	switch r {
	case RowTop, RowMiddle, RowBottom:
		return true
	}

	return false
}

// RowSize returns the maximum size of the row
func RowSize(row Row) int {
	switch row {
	case RowTop:
		return TopSize
	case RowMiddle:
		return MiddleSize
	case RowBottom:
		return BottomSize
	}

	panic(fmt.Sprintf("unknown row: %s", row))
}

// Cards returns the cards in the specified row
func (b *Board) Cards(row Row) []*deck.Card {
	switch row {
	case RowTop:
		return b.Top
	case RowMiddle:
		return b.Middle
	case RowBottom:
		return b.Bottom
	}

	panic(fmt.Sprintf("unknown row: %s", row))
}

// HasCapacity returns true if the row can take another card
func (b *Board) HasCapacity(row Row) bool {
	return len(b.Cards(row)) < RowSize(row)
}

// Place appends a card to the row
// ErrRowFull is returned if the row is at capacity.
func (b *Board) Place(row Row, card *deck.Card) error {
	if !b.HasCapacity(row) {
		return ErrRowFull
	}

	switch row {
	case RowTop:
		b.Top = append(b.Top, card)
	case RowMiddle:
		b.Middle = append(b.Middle, card)
	case RowBottom:
		b.Bottom = append(b.Bottom, card)
	}

	return nil
}

// CardCount returns the total number of cards on the board
func (b *Board) CardCount() int {
	return len(b.Top) + len(b.Middle) + len(b.Bottom)
}

// IsComplete returns true if every row is at capacity
func (b *Board) IsComplete() bool {
	return len(b.Top) == TopSize && len(b.Middle) == MiddleSize && len(b.Bottom) == BottomSize
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	clone := NewBoard()
	clone.Top = append(clone.Top, b.Top...)
	clone.Middle = append(clone.Middle, b.Middle...)
	clone.Bottom = append(clone.Bottom, b.Bottom...)

	return clone
}

func (b *Board) validate() error {
	if len(b.Top) > TopSize {
		return fmt.Errorf("top row has %d cards, max is %d", len(b.Top), TopSize)
	}

	if len(b.Middle) > MiddleSize {
		return fmt.Errorf("middle row has %d cards, max is %d", len(b.Middle), MiddleSize)
	}

	if len(b.Bottom) > BottomSize {
		return fmt.Errorf("bottom row has %d cards, max is %d", len(b.Bottom), BottomSize)
	}

	for _, card := range append(append(append([]*deck.Card{}, b.Top...), b.Middle...), b.Bottom...) {
		if card == nil {
			return errors.New("board contains a nil card")
		}

		if card.Rank < 2 || card.Rank > deck.Ace {
			return fmt.Errorf("board contains a card with invalid rank: %d", card.Rank)
		}
	}

	return nil
}
