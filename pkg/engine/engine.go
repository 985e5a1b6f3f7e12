// Package engine implements the transactional operations that drive a room
// through its lifecycle.
//
// Every operation reads the latest committed state inside a store
// transaction, re-derives whether it still applies, and either commits a
// single atomic write or silently no-ops. Redundant and concurrent
// invocations are expected traffic: idempotence comes from the precondition
// re-check, not from deduplication.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"pineapplepoker-server/internal/rng"
	"pineapplepoker-server/pkg/bot"
	"pineapplepoker-server/pkg/deck"
	"pineapplepoker-server/pkg/game"
	"pineapplepoker-server/pkg/ofc"
	"pineapplepoker-server/pkg/store"
)

// Options control engine timing and room limits
type Options struct {
	// PlacementTimeout is how long players have to place each street
	PlacementTimeout time.Duration

	// InterRoundDelay is the pause between a scored round and the next deal
	InterRoundDelay time.Duration

	// MaxPlayers is the room capacity, observers included
	MaxPlayers int

	// TotalRounds is the number of rounds per match for new rooms
	TotalRounds int
}

// DefaultOptions returns the default engine options
func DefaultOptions() Options {
	return Options{
		PlacementTimeout: time.Minute,
		InterRoundDelay:  10 * time.Second,
		MaxPlayers:       4,
		TotalRounds:      3,
	}
}

// Engine executes transactional game operations against the store
type Engine struct {
	store    store.Store
	strategy bot.Strategy
	opts     Options

	// overridable for tests
	now  func() time.Time
	seed func() int64
}

// New returns a new engine.
// Zero option fields fall back to the defaults.
func New(s store.Store, strategy bot.Strategy, opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.PlacementTimeout == 0 {
		opts.PlacementTimeout = defaults.PlacementTimeout
	}
	if opts.InterRoundDelay == 0 {
		opts.InterRoundDelay = defaults.InterRoundDelay
	}
	if opts.MaxPlayers == 0 {
		opts.MaxPlayers = defaults.MaxPlayers
	}
	if opts.TotalRounds == 0 {
		opts.TotalRounds = defaults.TotalRounds
	}

	return &Engine{
		store:    s,
		strategy: strategy,
		opts:     opts,
		now:      time.Now,
		seed:     rng.Crypto{}.Seed,
	}
}

// Room returns the current room document
func (e *Engine) Room(ctx context.Context, roomID string) (*game.Room, error) {
	var room *game.Room
	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		var err error
		room, err = tx.Room(roomID)
		return err
	})

	if err == store.ErrRoomNotFound {
		return nil, ErrRoomNotFound
	}

	return room, err
}

// StartRound deals the initial street to every ordered player.
// No-op unless the room is in the lobby with a started match (round >= 1)
// and at least two ordered players.
func (e *Engine) StartRound(ctx context.Context, roomID string) error {
	return e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err != nil {
			return ignoreMissingRoom(err)
		}

		if room.Phase != game.PhaseLobby || room.Round < 1 || len(room.PlayerOrder) < 2 {
			return nil
		}

		for _, player := range room.OrderedPlayers() {
			player.ResetForRound()

			d := deck.New()
			d.Shuffle(e.seed())

			hand, err := d.Deal(game.DealSize(1))
			if err != nil {
				return err
			}

			player.CurrentHand = hand
			if err := tx.SetPlayerDeck(roomID, player.UID, d.Cards); err != nil {
				return err
			}
			if err := tx.SetPlayerHand(roomID, player.UID, hand); err != nil {
				return err
			}
		}

		room.Street = 1
		room.Phase = game.PhaseInitialDeal
		room.RoundResults = nil
		deadline := e.now().Add(e.opts.PlacementTimeout)
		room.PhaseDeadline = &deadline
		room.UpdatedAt = e.now()

		return tx.SetRoom(room)
	})
}

// AdvanceStreet moves the room to the next street, or to scoring after the
// final street, once every active ordered player has placed.
// It returns whether the room advanced and the room's phase after the call.
func (e *Engine) AdvanceStreet(ctx context.Context, roomID string) (bool, game.Phase, error) {
	advanced := false
	var phase game.Phase

	err := e.store.RunTransaction(ctx, func(tx store.Tx) error {
		advanced = false

		room, err := tx.Room(roomID)
		if err != nil {
			return ignoreMissingRoom(err)
		}

		phase = room.Phase
		if !room.Phase.IsPlacement() || !room.AllActivePlayersPlaced() {
			return nil
		}

		if room.Street >= game.MaxStreet {
			room.Phase = game.PhaseScoring
			room.PhaseDeadline = nil
		} else {
			room.Street++
			room.Phase = game.PlacementPhase(room.Street)

			for _, player := range room.OrderedPlayers() {
				if player.Fouled {
					continue
				}

				remaining, err := tx.PlayerDeck(roomID, player.UID)
				if err != nil {
					return err
				}

				d := deck.FromCards(remaining)
				hand, err := d.Deal(game.DealSize(room.Street))
				if err != nil {
					return err
				}

				player.CurrentHand = hand
				if err := tx.SetPlayerDeck(roomID, player.UID, d.Cards); err != nil {
					return err
				}
				if err := tx.SetPlayerHand(roomID, player.UID, hand); err != nil {
					return err
				}
			}

			deadline := e.now().Add(e.opts.PlacementTimeout)
			room.PhaseDeadline = &deadline
		}

		advanced = true
		phase = room.Phase
		room.UpdatedAt = e.now()

		return tx.SetRoom(room)
	})

	return advanced, phase, err
}

// HandleTimeout force-places every stranded hand after the phase deadline.
// Cards are distributed in random order into the bottom, then middle, then
// top row; whatever cannot fit is discarded. The deadline is cleared.
func (e *Engine) HandleTimeout(ctx context.Context, roomID string) error {
	return e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err != nil {
			return ignoreMissingRoom(err)
		}

		if !room.Phase.IsPlacement() || !room.DeadlinePassed(e.now()) {
			return nil
		}

		touched := false
		for _, player := range room.OrderedPlayers() {
			if player.Fouled || player.HasPlaced() {
				continue
			}

			e.autoPlace(player)
			if err := tx.SetPlayerHand(roomID, player.UID, player.CurrentHand); err != nil {
				return err
			}

			touched = true
		}

		if !touched {
			return nil
		}

		room.PhaseDeadline = nil
		room.UpdatedAt = e.now()

		return tx.SetRoom(room)
	})
}

// autoPlace shuffles the player's hand and fills rows bottom to top,
// discarding any cards that do not fit
func (e *Engine) autoPlace(player *game.Player) {
	cards := player.CurrentHand.Clone()
	shuffleRNG := rand.New(rand.NewSource(e.shuffleSeed()))
	shuffleRNG.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	for _, card := range cards {
		placed := false
		for _, row := range []game.Row{game.RowBottom, game.RowMiddle, game.RowTop} {
			if player.Board.HasCapacity(row) {
				if err := player.Board.Place(row, card); err != nil {
					panic(err)
				}

				placed = true
				break
			}
		}

		if !placed {
			player.Discards++
		}
	}

	player.CurrentHand = deck.Hand{}
}

func (e *Engine) shuffleSeed() int64 {
	if seed := e.seed(); seed > 0 {
		return seed
	}

	return time.Now().UnixNano()
}

// PlaceBotCards applies the bot strategy for the given bot player.
// No-op unless the room is in a placement phase and the bot still holds a
// hand and has not fouled.
func (e *Engine) PlaceBotCards(ctx context.Context, roomID, uid string) error {
	return e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err != nil {
			return ignoreMissingRoom(err)
		}

		player, ok := room.Players[uid]
		if !room.Phase.IsPlacement() || !ok || !player.IsBot || player.Fouled || player.HasPlaced() {
			return nil
		}

		placements, discard := e.strategy.Place(player.Board, player.CurrentHand, room.Street)

		hand := player.CurrentHand.Clone()
		for _, placement := range placements {
			if hand.Discard(placement.Card) == 0 {
				return fmt.Errorf("bot strategy placed %s, which is not in its hand", placement.Card)
			}

			if err := player.Board.Place(placement.Row, placement.Card); err != nil {
				return err
			}
		}

		if discard != nil {
			if hand.Discard(discard) == 0 {
				return fmt.Errorf("bot strategy discarded %s, which is not in its hand", discard)
			}

			player.Discards++
		}

		player.CurrentHand = deck.Hand{}
		if err := tx.SetPlayerHand(roomID, uid, player.CurrentHand); err != nil {
			return err
		}

		room.UpdatedAt = e.now()
		return tx.SetRoom(room)
	})
}

// ScoreRound scores the completed round and either arms the inter-round
// deadline or completes the match. No-op unless the room is in scoring.
func (e *Engine) ScoreRound(ctx context.Context, roomID string) error {
	return e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err != nil {
			return ignoreMissingRoom(err)
		}

		if room.Phase != game.PhaseScoring {
			return nil
		}

		results := ofc.ScoreRound(room.Players, room.PlayerOrder)
		for uid, result := range results {
			player := room.Players[uid]
			player.Fouled = result.Fouled
			player.Score += result.Points
		}

		room.RoundResults = results

		if room.Round >= room.TotalRounds {
			room.Phase = game.PhaseMatchComplete
			room.PhaseDeadline = nil
		} else {
			room.Phase = game.PhaseComplete
			deadline := e.now().Add(e.opts.InterRoundDelay)
			room.PhaseDeadline = &deadline
		}

		room.UpdatedAt = e.now()
		return tx.SetRoom(room)
	})
}

// ResetRound clears every player's board for the next round and returns the
// room to the lobby. No-op unless the room is in the complete phase.
func (e *Engine) ResetRound(ctx context.Context, roomID string) error {
	return e.store.RunTransaction(ctx, func(tx store.Tx) error {
		room, err := tx.Room(roomID)
		if err != nil {
			return ignoreMissingRoom(err)
		}

		if room.Phase != game.PhaseComplete {
			return nil
		}

		// observers included so everyone starts the next round clean
		for uid, player := range room.Players {
			player.ResetForRound()
			if err := tx.DeletePlayerDocs(roomID, uid); err != nil {
				return err
			}
		}

		room.Round++
		room.RoundResults = nil
		room.PhaseDeadline = nil
		room.Phase = game.PhaseLobby
		room.UpdatedAt = e.now()

		return tx.SetRoom(room)
	})
}

// CheckAndAdvance repeatedly advances the street until no further advance
// applies, then triggers scoring if the room reached it. The iteration count
// is bounded so a room where every remaining player fouls still terminates.
func (e *Engine) CheckAndAdvance(ctx context.Context, roomID string) error {
	for i := 0; i <= game.MaxStreet; i++ {
		advanced, phase, err := e.AdvanceStreet(ctx, roomID)
		if err != nil {
			return err
		}

		if phase == game.PhaseScoring {
			return e.ScoreRound(ctx, roomID)
		}

		if !advanced {
			return nil
		}
	}

	return nil
}

// ignoreMissingRoom converts a missing room into a silent no-op.
// Reactor-driven operations race with room deletion; a vanished room is
// stale-trigger traffic, not a failure.
func ignoreMissingRoom(err error) error {
	if err == store.ErrRoomNotFound {
		return nil
	}

	return err
}
