// Package store defines the shared document store the engine mutates.
//
// All room mutation flows through RunTransaction: read the latest state,
// validate, compute, and commit atomically. Implementations either serialize
// transactions outright or retry the callback on write conflict, so the
// callback must be free of side effects other than staged writes.
package store

import (
	"context"
	"errors"
	"time"

	"pineapplepoker-server/pkg/deck"
	"pineapplepoker-server/pkg/game"
)

// ErrRoomNotFound is returned when a room document does not exist
var ErrRoomNotFound = errors.New("room not found")

// Event is a change notification for a single room.
// Room is nil when the room has been removed.
type Event struct {
	RoomID string
	Room   *game.Room
}

// Tx is the read/write surface available inside a transaction.
// Reads always observe the latest committed state; writes are staged and
// commit together or not at all.
type Tx interface {
	// Room returns the room document or ErrRoomNotFound
	Room(id string) (*game.Room, error)

	// SetRoom stages a write of the room document
	SetRoom(room *game.Room) error

	// DeleteRoom stages a delete of the room and all of its private documents
	DeleteRoom(id string) error

	// PlayerDeck returns the player's remaining personal deck
	PlayerDeck(roomID, uid string) ([]*deck.Card, error)

	// SetPlayerDeck stages a write of the player's remaining personal deck
	SetPlayerDeck(roomID, uid string, cards []*deck.Card) error

	// PlayerHand returns the player's private in-flight hand document
	PlayerHand(roomID, uid string) ([]*deck.Card, error)

	// SetPlayerHand stages a write of the player's private in-flight hand
	SetPlayerHand(roomID, uid string, cards []*deck.Card) error

	// DeletePlayerDocs stages a delete of the player's private documents
	DeletePlayerDocs(roomID, uid string) error
}

// Store is a multi-writer document store holding room state
type Store interface {
	// RunTransaction executes fn atomically against the latest state.
	// If fn returns an error, nothing is written and the error is returned.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error

	// Subscribe returns a stream of change events across all rooms.
	// Events for different rooms carry no ordering guarantee; events for a
	// single room are delivered in commit order. The channel is closed when
	// ctx is done.
	Subscribe(ctx context.Context) (<-chan Event, error)

	// StaleRooms returns ids of rooms not updated since the cutoff
	StaleRooms(ctx context.Context, cutoff time.Time) ([]string, error)

	// Close releases any resources held by the store
	Close() error
}

// cardsDoc is the persisted shape of a private per-player document
type cardsDoc struct {
	Cards []*deck.Card `json:"cards"`
}
