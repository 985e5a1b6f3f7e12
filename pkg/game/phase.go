package game

import "fmt"

// Phase is the lifecycle phase of a room
type Phase string

// phase constants
const (
	PhaseLobby         Phase = "lobby"
	PhaseInitialDeal   Phase = "initial_deal"
	PhaseStreet2       Phase = "street_2"
	PhaseStreet3       Phase = "street_3"
	PhaseStreet4       Phase = "street_4"
	PhaseStreet5       Phase = "street_5"
	PhaseScoring       Phase = "scoring"
	PhaseComplete      Phase = "complete"
	PhaseMatchComplete Phase = "match_complete"
)

// street and deal sizes
const (
	MaxStreet       = 5
	InitialDealSize = 5
	StreetDealSize  = 3
	StreetPlaceSize = 2
)

var validPhases = map[Phase]bool{
	PhaseLobby:         true,
	PhaseInitialDeal:   true,
	PhaseStreet2:       true,
	PhaseStreet3:       true,
	PhaseStreet4:       true,
	PhaseStreet5:       true,
	PhaseScoring:       true,
	PhaseComplete:      true,
	PhaseMatchComplete: true,
}

// Valid returns true if the phase is a known phase
func (p Phase) Valid() bool {
	return validPhases[p]
}

// IsPlacement returns true if players may place cards during the phase
func (p Phase) IsPlacement() bool {
	switch p {
	case PhaseInitialDeal, PhaseStreet2, PhaseStreet3, PhaseStreet4, PhaseStreet5:
		return true
	}

	return false
}

// PlacementPhase returns the phase for the given street (1 through MaxStreet)
func PlacementPhase(street int) Phase {
	switch street {
	case 1:
		return PhaseInitialDeal
	case 2, 3, 4, 5:
		return Phase(fmt.Sprintf("street_%d", street))
	}

	panic(fmt.Sprintf("no placement phase for street %d", street))
}

// DealSize returns the number of cards dealt on the given street
func DealSize(street int) int {
	if street == 1 {
		return InitialDealSize
	}

	return StreetDealSize
}

// PlaceSize returns the number of cards a player must place on the given street
func PlaceSize(street int) int {
	if street == 1 {
		return InitialDealSize
	}

	return StreetPlaceSize
}

// DiscardSize returns the number of cards a player must discard on the given street
func DiscardSize(street int) int {
	if street == 1 {
		return 0
	}

	return 1
}
