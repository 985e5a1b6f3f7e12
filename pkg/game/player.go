package game

import (
	"fmt"

	"pineapplepoker-server/pkg/deck"
)

// Player is the per-player state within a room
type Player struct {
	UID          string    `json:"uid"`
	DisplayName  string    `json:"displayName"`
	Board        *Board    `json:"board"`
	CurrentHand  deck.Hand `json:"currentHand"`
	Fouled       bool      `json:"fouled"`
	Score        int       `json:"score"`
	IsBot        bool      `json:"isBot"`
	Disconnected bool      `json:"disconnected"`
	Discards     int       `json:"discards"`

	// HandCount is only populated on censored views where CurrentHand is hidden
	HandCount int `json:"handCount,omitempty"`
}

// NewPlayer returns a new player
func NewPlayer(uid, displayName string) *Player {
	return &Player{
		UID:         uid,
		DisplayName: displayName,
		Board:       NewBoard(),
		CurrentHand: deck.Hand{},
	}
}

// HasPlaced returns true if the player holds no cards
func (p *Player) HasPlaced() bool {
	return len(p.CurrentHand) == 0
}

// ResetForRound clears the board, hand, foul flag, and discard count
func (p *Player) ResetForRound() {
	p.Board = NewBoard()
	p.CurrentHand = deck.Hand{}
	p.Fouled = false
	p.Discards = 0
}

func (p *Player) validate() error {
	if p.UID == "" {
		return fmt.Errorf("player has an empty uid")
	}

	if p.Board == nil {
		return fmt.Errorf("player %s has no board", p.UID)
	}

	if err := p.Board.validate(); err != nil {
		return fmt.Errorf("player %s: %w", p.UID, err)
	}

	if len(p.CurrentHand) > InitialDealSize {
		return fmt.Errorf("player %s holds %d cards, max is %d", p.UID, len(p.CurrentHand), InitialDealSize)
	}

	return nil
}
