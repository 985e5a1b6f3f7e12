package engine

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"pineapplepoker-server/internal/util"
	"pineapplepoker-server/pkg/deck"
	"pineapplepoker-server/pkg/game"
	"pineapplepoker-server/pkg/store"
)

// Join adds the player to the room, creating it first when create is true.
// Players joining mid-match become observers; only lobby joins before the
// match starts enter the turn order. Joining a room you are already in is a
// no-op.
func (e *Engine) Join(ctx context.Context, roomID, uid, displayName string, create bool) (*game.Room, error) {
	var joined *game.Room
	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err == store.ErrRoomNotFound {
			if !create {
				return ErrRoomNotFound
			}

			joined = game.NewRoom(roomID, uid, displayName, e.opts.TotalRounds, e.now())
			return tx.SetRoom(joined)
		} else if err != nil {
			return err
		}

		if _, ok := room.Players[uid]; ok {
			joined = room
			return nil
		}

		if len(room.Players) >= e.opts.MaxPlayers {
			return ErrRoomFull
		}

		room.Players[uid] = game.NewPlayer(uid, displayName)
		if room.Phase == game.PhaseLobby && room.Round == 0 {
			room.PlayerOrder = append(room.PlayerOrder, uid)
		}

		room.UpdatedAt = e.now()
		joined = room

		return tx.SetRoom(room)
	})

	return joined, err
}

// Leave removes the player from the room.
// The next ordered player inherits the host seat if the host left; the room
// is deleted outright when its last player leaves.
func (e *Engine) Leave(ctx context.Context, roomID, uid string) error {
	return e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err != nil {
			return ignoreMissingRoom(err)
		}

		if _, ok := room.Players[uid]; !ok {
			return nil
		}

		delete(room.Players, uid)
		room.PlayerOrder = removeUID(room.PlayerOrder, uid)
		if err := tx.DeletePlayerDocs(roomID, uid); err != nil {
			return err
		}

		if len(room.Players) == 0 {
			return tx.DeleteRoom(roomID)
		}

		if room.HostUID == uid {
			room.HostUID = nextHost(room)
		}

		room.UpdatedAt = e.now()
		return tx.SetRoom(room)
	})
}

// Place applies a player's chosen placements for the current street.
// Street 1 places all five dealt cards; later streets place two and discard
// one. The phase deadline is deliberately left untouched so placing cards
// never resets anyone's clock.
func (e *Engine) Place(ctx context.Context, roomID, uid string, placements []game.Placement, discard *deck.Card) (*game.Room, error) {
	var placed *game.Room
	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err == store.ErrRoomNotFound {
			return ErrRoomNotFound
		} else if err != nil {
			return err
		}

		if !room.Phase.IsPlacement() {
			return ErrWrongPhase
		}

		player, ok := room.Players[uid]
		if !ok {
			return ErrPlayerNotFound
		}

		if !room.IsOrdered(uid) {
			return ErrNotPlaying
		}

		if player.HasPlaced() || player.Fouled {
			return ErrNoCards
		}

		if len(placements) != game.PlaceSize(room.Street) {
			return ErrBadPlacement
		}

		wantDiscard := game.DiscardSize(room.Street) > 0
		if wantDiscard != (discard != nil) {
			return ErrBadPlacement
		}

		hand := player.CurrentHand.Clone()
		board := player.Board.Clone()

		for _, placement := range placements {
			if placement.Card == nil || hand.Discard(placement.Card) == 0 {
				return ErrCardNotInHand
			}

			if err := board.Place(placement.Row, placement.Card); err != nil {
				return ErrRowFull
			}
		}

		if discard != nil {
			if hand.Discard(discard) == 0 {
				return ErrCardNotInHand
			}
		}

		if len(hand) != 0 {
			return ErrBadPlacement
		}

		player.Board = board
		player.CurrentHand = deck.Hand{}
		if discard != nil {
			player.Discards++
		}

		if err := tx.SetPlayerHand(roomID, uid, player.CurrentHand); err != nil {
			return err
		}

		room.UpdatedAt = e.now()
		placed = room

		return tx.SetRoom(room)
	})

	return placed, err
}

// StartMatch begins the match: host-only, lobby-only, and only before any
// round has been played. The engine's StartRound deals on the next reactor
// pass once the round counter leaves zero.
func (e *Engine) StartMatch(ctx context.Context, roomID, uid string) error {
	return e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err == store.ErrRoomNotFound {
			return ErrRoomNotFound
		} else if err != nil {
			return err
		}

		if room.HostUID != uid {
			return ErrNotHost
		}

		if room.Phase != game.PhaseLobby {
			return ErrWrongPhase
		}

		if room.Round != 0 {
			return ErrMatchInProgress
		}

		if len(room.PlayerOrder) < 2 {
			return ErrNotEnoughPlayers
		}

		room.Round = 1
		room.UpdatedAt = e.now()

		return tx.SetRoom(room)
	})
}

// PlayAgain resets a completed match back to a fresh lobby.
// Every present player, observers included, enters the new turn order.
func (e *Engine) PlayAgain(ctx context.Context, roomID, uid string) error {
	return e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err == store.ErrRoomNotFound {
			return ErrRoomNotFound
		} else if err != nil {
			return err
		}

		if room.HostUID != uid {
			return ErrNotHost
		}

		if room.Phase != game.PhaseMatchComplete {
			return ErrWrongPhase
		}

		for id, player := range room.Players {
			player.ResetForRound()
			player.Score = 0
			if err := tx.DeletePlayerDocs(roomID, id); err != nil {
				return err
			}
		}

		order := make([]string, 0, len(room.Players))
		seen := make(map[string]bool, len(room.Players))
		for _, id := range room.PlayerOrder {
			if _, ok := room.Players[id]; ok {
				order = append(order, id)
				seen[id] = true
			}
		}

		observers := make([]string, 0, len(room.Players))
		for id := range room.Players {
			if !seen[id] {
				observers = append(observers, id)
			}
		}
		sort.Strings(observers)

		room.PlayerOrder = append(order, observers...)
		room.Round = 0
		room.Street = 0
		room.RoundResults = nil
		room.PhaseDeadline = nil
		room.Phase = game.PhaseLobby
		room.UpdatedAt = e.now()

		return tx.SetRoom(room)
	})
}

// AddBot seats a bot player with a generated display name.
// Host-only, and only while a fresh lobby is forming: the turn order is
// fixed once a match starts.
func (e *Engine) AddBot(ctx context.Context, roomID, uid string) (*game.Player, error) {
	var added *game.Player
	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err == store.ErrRoomNotFound {
			return ErrRoomNotFound
		} else if err != nil {
			return err
		}

		if room.HostUID != uid {
			return ErrNotHost
		}

		if room.Phase != game.PhaseLobby {
			return ErrWrongPhase
		}

		if room.Round != 0 {
			return ErrMatchInProgress
		}

		if len(room.Players) >= e.opts.MaxPlayers {
			return ErrRoomFull
		}

		taken := make(map[string]bool, len(room.Players))
		for _, player := range room.Players {
			taken[player.DisplayName] = true
		}

		botUID := "bot-" + uuid.New().String()
		botPlayer := game.NewPlayer(botUID, util.RandomBotName(taken))
		botPlayer.IsBot = true

		room.Players[botUID] = botPlayer
		room.PlayerOrder = append(room.PlayerOrder, botUID)
		room.UpdatedAt = e.now()
		added = botPlayer

		return tx.SetRoom(room)
	})

	return added, err
}

// RemoveBot unseats a bot player. Host-only, lobby-only.
func (e *Engine) RemoveBot(ctx context.Context, roomID, uid, botUID string) error {
	return e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err == store.ErrRoomNotFound {
			return ErrRoomNotFound
		} else if err != nil {
			return err
		}

		if room.HostUID != uid {
			return ErrNotHost
		}

		if room.Phase != game.PhaseLobby {
			return ErrWrongPhase
		}

		player, ok := room.Players[botUID]
		if !ok || !player.IsBot {
			return ErrBotNotFound
		}

		delete(room.Players, botUID)
		room.PlayerOrder = removeUID(room.PlayerOrder, botUID)
		if err := tx.DeletePlayerDocs(roomID, botUID); err != nil {
			return err
		}

		room.UpdatedAt = e.now()
		return tx.SetRoom(room)
	})
}

func removeUID(order []string, uid string) []string {
	out := make([]string, 0, len(order))
	for _, id := range order {
		if id != uid {
			out = append(out, id)
		}
	}

	return out
}

// nextHost picks the first remaining ordered player, falling back to the
// lowest uid so the choice is deterministic
func nextHost(room *game.Room) string {
	for _, uid := range room.PlayerOrder {
		if _, ok := room.Players[uid]; ok {
			return uid
		}
	}

	uids := make([]string, 0, len(room.Players))
	for uid := range room.Players {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	return uids[0]
}
