package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pineapplepoker-server/pkg/deck"
	"pineapplepoker-server/pkg/game"
)

type privateKey struct {
	roomID string
	uid    string
	kind   string
}

const (
	kindDeck = "deck"
	kindHand = "hand"
)

// Memory is an in-process Store.
// Transactions are serialized by a mutex, which trivially satisfies the
// read-latest-commit-atomically contract. It is the default store for
// development and tests.
type Memory struct {
	mu          sync.Mutex
	rooms       map[string][]byte
	privates    map[privateKey][]byte
	subscribers map[chan Event]bool
	closed      bool
}

// NewMemory returns a new in-memory store
func NewMemory() *Memory {
	return &Memory{
		rooms:       make(map[string][]byte),
		privates:    make(map[privateKey][]byte),
		subscribers: make(map[chan Event]bool),
	}
}

type memoryTx struct {
	store *Memory

	setRooms       map[string]*game.Room
	deleteRooms    map[string]bool
	setPrivates    map[privateKey][]byte
	deletePrivates map[privateKey]bool
}

func (m *Memory) newTx() *memoryTx {
	return &memoryTx{
		store:          m,
		setRooms:       make(map[string]*game.Room),
		deleteRooms:    make(map[string]bool),
		setPrivates:    make(map[privateKey][]byte),
		deletePrivates: make(map[privateKey]bool),
	}
}

// RunTransaction runs fn while holding the store lock and applies its staged
// writes if fn succeeds
func (m *Memory) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	tx := m.newTx()
	if err := fn(tx); err != nil {
		m.mu.Unlock()
		return err
	}

	for _, event := range tx.commit() {
		m.broadcast(event)
	}
	m.mu.Unlock()

	return nil
}

// commit must be called with the store lock held
func (tx *memoryTx) commit() []Event {
	m := tx.store
	events := make([]Event, 0, len(tx.setRooms)+len(tx.deleteRooms))

	for id, room := range tx.setRooms {
		raw, err := json.Marshal(room)
		if err != nil {
			panic(fmt.Sprintf("could not marshal room %s: %v", id, err))
		}

		m.rooms[id] = raw
		events = append(events, Event{RoomID: id, Room: room.Clone()})
	}

	for id := range tx.deleteRooms {
		delete(m.rooms, id)
		for key := range m.privates {
			if key.roomID == id {
				delete(m.privates, key)
			}
		}

		events = append(events, Event{RoomID: id})
	}

	for key, raw := range tx.setPrivates {
		m.privates[key] = raw
	}

	for key := range tx.deletePrivates {
		delete(m.privates, key)
	}

	return events
}

func (tx *memoryTx) Room(id string) (*game.Room, error) {
	if room, ok := tx.setRooms[id]; ok {
		return room.Clone(), nil
	}

	if tx.deleteRooms[id] {
		return nil, ErrRoomNotFound
	}

	raw, ok := tx.store.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return decodeRoom(raw)
}

func (tx *memoryTx) SetRoom(room *game.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}

	tx.setRooms[room.ID] = room.Clone()
	delete(tx.deleteRooms, room.ID)
	return nil
}

func (tx *memoryTx) DeleteRoom(id string) error {
	tx.deleteRooms[id] = true
	delete(tx.setRooms, id)
	return nil
}

func (tx *memoryTx) PlayerDeck(roomID, uid string) ([]*deck.Card, error) {
	return tx.private(privateKey{roomID, uid, kindDeck})
}

func (tx *memoryTx) SetPlayerDeck(roomID, uid string, cards []*deck.Card) error {
	return tx.setPrivate(privateKey{roomID, uid, kindDeck}, cards)
}

func (tx *memoryTx) PlayerHand(roomID, uid string) ([]*deck.Card, error) {
	return tx.private(privateKey{roomID, uid, kindHand})
}

func (tx *memoryTx) SetPlayerHand(roomID, uid string, cards []*deck.Card) error {
	return tx.setPrivate(privateKey{roomID, uid, kindHand}, cards)
}

func (tx *memoryTx) DeletePlayerDocs(roomID, uid string) error {
	for _, kind := range []string{kindDeck, kindHand} {
		key := privateKey{roomID, uid, kind}
		tx.deletePrivates[key] = true
		delete(tx.setPrivates, key)
	}

	return nil
}

func (tx *memoryTx) private(key privateKey) ([]*deck.Card, error) {
	if raw, ok := tx.setPrivates[key]; ok {
		return decodeCards(raw)
	}

	if tx.deletePrivates[key] {
		return []*deck.Card{}, nil
	}

	raw, ok := tx.store.privates[key]
	if !ok {
		return []*deck.Card{}, nil
	}

	return decodeCards(raw)
}

func (tx *memoryTx) setPrivate(key privateKey, cards []*deck.Card) error {
	raw, err := json.Marshal(cardsDoc{Cards: cards})
	if err != nil {
		return err
	}

	tx.setPrivates[key] = raw
	delete(tx.deletePrivates, key)
	return nil
}

// Subscribe returns a stream of change events
func (m *Memory) Subscribe(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 256)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		close(ch)
		return ch, nil
	}
	m.subscribers[ch] = true
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		if m.subscribers[ch] {
			delete(m.subscribers, ch)
			close(ch)
		}
		m.mu.Unlock()
	}()

	return ch, nil
}

// broadcast must be called with the store lock held so that events for a
// single room reach subscribers in commit order
func (m *Memory) broadcast(event Event) {
	for ch := range m.subscribers {
		select {
		case ch <- event:
		default:
			// a subscriber that cannot keep up loses events rather than
			// blocking every other room's progress
		}
	}
}

// StaleRooms returns ids of rooms not updated since the cutoff
func (m *Memory) StaleRooms(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id, raw := range m.rooms {
		room, err := decodeRoom(raw)
		if err != nil {
			return nil, err
		}

		if room.UpdatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// Close closes all subscriber channels
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for ch := range m.subscribers {
		delete(m.subscribers, ch)
		close(ch)
	}

	return nil
}

// decodeRoom parses and validates a stored room document.
// A document that fails validation is corrupt and never enters the engine.
func decodeRoom(raw []byte) (*game.Room, error) {
	var room game.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return nil, fmt.Errorf("could not unmarshal room document: %w", err)
	}

	if err := room.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt room document: %w", err)
	}

	return &room, nil
}

func decodeCards(raw []byte) ([]*deck.Card, error) {
	var doc cardsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("could not unmarshal cards document: %w", err)
	}

	if doc.Cards == nil {
		return []*deck.Card{}, nil
	}

	return doc.Cards, nil
}
