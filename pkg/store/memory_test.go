package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pineapplepoker-server/pkg/deck"
	"pineapplepoker-server/pkg/game"
)

func newTestRoom(id string) *game.Room {
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	room := game.NewRoom(id, "host", "Host", 3, now)
	room.Players["guest"] = game.NewPlayer("guest", "Guest")
	room.PlayerOrder = append(room.PlayerOrder, "guest")

	return room
}

func TestMemory_RoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.RunTransaction(ctx, func(tx Tx) error {
		_, err := tx.Room("room-1")
		assert.Equal(t, ErrRoomNotFound, err)

		return tx.SetRoom(newTestRoom("room-1"))
	})
	require.NoError(t, err)

	err = m.RunTransaction(ctx, func(tx Tx) error {
		room, err := tx.Room("room-1")
		require.NoError(t, err)
		assert.Equal(t, game.PhaseLobby, room.Phase)
		assert.Equal(t, []string{"host", "guest"}, room.PlayerOrder)

		return nil
	})
	require.NoError(t, err)
}

func TestMemory_FailedTransactionWritesNothing(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.RunTransaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.SetRoom(newTestRoom("room-1")))
		return assert.AnError
	})
	assert.Equal(t, assert.AnError, err)

	err = m.RunTransaction(ctx, func(tx Tx) error {
		_, err := tx.Room("room-1")
		assert.Equal(t, ErrRoomNotFound, err)
		return nil
	})
	require.NoError(t, err)
}

func TestMemory_RejectsInvalidRoom(t *testing.T) {
	m := NewMemory()

	err := m.RunTransaction(context.Background(), func(tx Tx) error {
		room := newTestRoom("room-1")
		room.Phase = game.Phase("intermission")
		return tx.SetRoom(room)
	})
	assert.Error(t, err)
}

func TestMemory_PrivateDocs(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.RunTransaction(ctx, func(tx Tx) error {
		// an absent document reads as empty
		cards, err := tx.PlayerDeck("room-1", "host")
		require.NoError(t, err)
		assert.Empty(t, cards)

		require.NoError(t, tx.SetPlayerDeck("room-1", "host", deck.CardsFromString("2c,3c,4c")))
		require.NoError(t, tx.SetPlayerHand("room-1", "host", deck.CardsFromString("5c,6c")))

		// reads observe staged writes
		cards, err = tx.PlayerDeck("room-1", "host")
		require.NoError(t, err)
		assert.Equal(t, "2c,3c,4c", deck.CardsToString(cards))

		return nil
	})
	require.NoError(t, err)

	err = m.RunTransaction(ctx, func(tx Tx) error {
		hand, err := tx.PlayerHand("room-1", "host")
		require.NoError(t, err)
		assert.Equal(t, "5c,6c", deck.CardsToString(hand))

		require.NoError(t, tx.DeletePlayerDocs("room-1", "host"))
		return nil
	})
	require.NoError(t, err)

	err = m.RunTransaction(ctx, func(tx Tx) error {
		hand, err := tx.PlayerHand("room-1", "host")
		require.NoError(t, err)
		assert.Empty(t, hand)
		return nil
	})
	require.NoError(t, err)
}

func TestMemory_DeleteRoomRemovesPrivateDocs(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	err := m.RunTransaction(ctx, func(tx Tx) error {
		require.NoError(t, tx.SetRoom(newTestRoom("room-1")))
		return tx.SetPlayerDeck("room-1", "host", deck.CardsFromString("2c"))
	})
	require.NoError(t, err)

	err = m.RunTransaction(ctx, func(tx Tx) error {
		return tx.DeleteRoom("room-1")
	})
	require.NoError(t, err)

	err = m.RunTransaction(ctx, func(tx Tx) error {
		_, err := tx.Room("room-1")
		assert.Equal(t, ErrRoomNotFound, err)

		cards, err := tx.PlayerDeck("room-1", "host")
		require.NoError(t, err)
		assert.Empty(t, cards)
		return nil
	})
	require.NoError(t, err)
}

func TestMemory_Subscribe(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := m.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, m.RunTransaction(ctx, func(tx Tx) error {
		return tx.SetRoom(newTestRoom("room-1"))
	}))

	select {
	case event := <-events:
		assert.Equal(t, "room-1", event.RoomID)
		require.NotNil(t, event.Room)
		assert.Equal(t, game.PhaseLobby, event.Room.Phase)
	case <-time.After(time.Second):
		t.Fatal("expected a change event")
	}

	require.NoError(t, m.RunTransaction(ctx, func(tx Tx) error {
		return tx.DeleteRoom("room-1")
	}))

	select {
	case event := <-events:
		assert.Equal(t, "room-1", event.RoomID)
		assert.Nil(t, event.Room)
	case <-time.After(time.Second):
		t.Fatal("expected a removal event")
	}

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected the channel to close")
	}
}

func TestMemory_SubscribeDeliversInCommitOrder(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := m.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, m.RunTransaction(ctx, func(tx Tx) error {
		return tx.SetRoom(newTestRoom("room-1"))
	}))

	// each transaction increments the round, so even with a lossy subscriber
	// the observed rounds must be strictly increasing
	done := make(chan error, 1)
	go func() {
		last := -1
		for event := range events {
			if event.Room.Round <= last {
				done <- fmt.Errorf("round %d delivered after round %d", event.Room.Round, last)
				return
			}

			last = event.Room.Round
		}

		done <- nil
	}()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				err := m.RunTransaction(ctx, func(tx Tx) error {
					room, err := tx.Room("room-1")
					if err != nil {
						return err
					}

					room.Round++
					return tx.SetRoom(room)
				})
				assert.NoError(t, err)
			}
		}()
	}

	wg.Wait()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber did not finish")
	}
}

func TestMemory_StaleRooms(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	old := newTestRoom("old-room")
	old.UpdatedAt = time.Now().Add(-48 * time.Hour)

	fresh := newTestRoom("fresh-room")
	fresh.UpdatedAt = time.Now()

	require.NoError(t, m.RunTransaction(ctx, func(tx Tx) error {
		if err := tx.SetRoom(old); err != nil {
			return err
		}

		return tx.SetRoom(fresh)
	}))

	ids, err := m.StaleRooms(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"old-room"}, ids)
}
