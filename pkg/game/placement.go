package game

import "pineapplepoker-server/pkg/deck"

// Placement assigns one card from a player's hand to a board row
type Placement struct {
	Card *deck.Card `json:"card"`
	Row  Row        `json:"row"`
}
