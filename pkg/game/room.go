package game

import (
	"fmt"
	"time"
)

// RoundResult is a player's net outcome for a single round
type RoundResult struct {
	Points int  `json:"points"`
	Fouled bool `json:"fouled"`
}

// Room is the persisted state of one room
type Room struct {
	ID           string                  `json:"id"`
	Phase        Phase                   `json:"phase"`
	Players      map[string]*Player      `json:"players"`
	PlayerOrder  []string                `json:"playerOrder"`
	Street       int                     `json:"street"`
	Round        int                     `json:"round"`
	TotalRounds  int                     `json:"totalRounds"`
	HostUID      string                  `json:"hostUid"`
	RoundResults map[string]*RoundResult `json:"roundResults,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`

	// PhaseDeadline is the absolute time the current phase expires.
	// A nil deadline means no timer should be armed.
	PhaseDeadline *time.Time `json:"phaseDeadline"`
}

// NewRoom creates a room in the lobby with the host as its only player
func NewRoom(id, hostUID, hostName string, totalRounds int, now time.Time) *Room {
	return &Room{
		ID:    id,
		Phase: PhaseLobby,
		Players: map[string]*Player{
			hostUID: NewPlayer(hostUID, hostName),
		},
		PlayerOrder: []string{hostUID},
		TotalRounds: totalRounds,
		HostUID:     hostUID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsOrdered returns true if the uid is in the turn order for the current match
func (r *Room) IsOrdered(uid string) bool {
	for _, id := range r.PlayerOrder {
		if id == uid {
			return true
		}
	}

	return false
}

// OrderedPlayers returns the turn-eligible players in order
func (r *Room) OrderedPlayers() []*Player {
	players := make([]*Player, 0, len(r.PlayerOrder))
	for _, uid := range r.PlayerOrder {
		if player, ok := r.Players[uid]; ok {
			players = append(players, player)
		}
	}

	return players
}

// AllActivePlayersPlaced returns true if every non-fouled ordered player holds no cards
func (r *Room) AllActivePlayersPlaced() bool {
	for _, player := range r.OrderedPlayers() {
		if !player.Fouled && !player.HasPlaced() {
			return false
		}
	}

	return true
}

// DeadlinePassed returns true if the phase deadline exists and has elapsed
func (r *Room) DeadlinePassed(now time.Time) bool {
	return r.PhaseDeadline != nil && !r.PhaseDeadline.After(now)
}

// Validate checks the document shape after it has been read from the store.
// A validation failure means the document is corrupt and must not enter the engine.
func (r *Room) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("room has an empty id")
	}

	if !r.Phase.Valid() {
		return fmt.Errorf("room %s has unknown phase: %s", r.ID, r.Phase)
	}

	if r.Players == nil {
		return fmt.Errorf("room %s has no players map", r.ID)
	}

	if r.Street < 0 || r.Street > MaxStreet {
		return fmt.Errorf("room %s has invalid street: %d", r.ID, r.Street)
	}

	if r.Round < 0 {
		return fmt.Errorf("room %s has invalid round: %d", r.ID, r.Round)
	}

	for uid, player := range r.Players {
		if player == nil {
			return fmt.Errorf("room %s has a nil player: %s", r.ID, uid)
		}

		if player.UID != uid {
			return fmt.Errorf("room %s player key %s does not match uid %s", r.ID, uid, player.UID)
		}

		if err := player.validate(); err != nil {
			return fmt.Errorf("room %s: %w", r.ID, err)
		}
	}

	for _, uid := range r.PlayerOrder {
		if _, ok := r.Players[uid]; !ok {
			return fmt.Errorf("room %s orders unknown player: %s", r.ID, uid)
		}
	}

	if len(r.Players) > 0 {
		if _, ok := r.Players[r.HostUID]; !ok {
			return fmt.Errorf("room %s host %s is not a player", r.ID, r.HostUID)
		}
	}

	return nil
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	clone := *r

	clone.Players = make(map[string]*Player, len(r.Players))
	for uid, player := range r.Players {
		p := *player
		p.Board = player.Board.Clone()
		p.CurrentHand = player.CurrentHand.Clone()
		clone.Players[uid] = &p
	}

	clone.PlayerOrder = append([]string{}, r.PlayerOrder...)

	if r.RoundResults != nil {
		clone.RoundResults = make(map[string]*RoundResult, len(r.RoundResults))
		for uid, result := range r.RoundResults {
			res := *result
			clone.RoundResults[uid] = &res
		}
	}

	if r.PhaseDeadline != nil {
		deadline := *r.PhaseDeadline
		clone.PhaseDeadline = &deadline
	}

	return &clone
}

// Censored returns a copy of the room that is safe to send to the given player.
// Other players' in-flight hands are hidden and replaced with a card count.
func (r *Room) Censored(uid string) *Room {
	clone := r.Clone()
	for id, player := range clone.Players {
		if id == uid {
			continue
		}

		player.HandCount = len(player.CurrentHand)
		player.CurrentHand = nil
	}

	return clone
}
