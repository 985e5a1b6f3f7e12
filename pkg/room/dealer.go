// Package room reacts to committed room state.
//
// The dealer consumes the store's change feed and decides, per snapshot,
// which engine operation to fire next: dealing, bot moves, deadline
// enforcement, scoring, and round resets. Engine operations re-check their
// own preconditions, so the dealer may fire them redundantly without harm.
package room

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"pineapplepoker-server/pkg/engine"
	"pineapplepoker-server/pkg/game"
	"pineapplepoker-server/pkg/store"
)

// Dealer drives rooms forward in response to store events
type Dealer struct {
	engine   *engine.Engine
	store    store.Store
	botDelay time.Duration

	fired chan timerFire
	rooms map[string]*roomState
}

type roomState struct {
	deadline *time.Time
	timer    *time.Timer
	botKey   string
}

type timerFire struct {
	roomID   string
	deadline time.Time
}

// NewDealer creates a new dealer.
// botDelay is how long a bot appears to think before placing its cards.
func NewDealer(e *engine.Engine, s store.Store, botDelay time.Duration) *Dealer {
	return &Dealer{
		engine:   e,
		store:    s,
		botDelay: botDelay,
		fired:    make(chan timerFire, 256),
		rooms:    make(map[string]*roomState),
	}
}

// StartShift subscribes to the store and starts the run loop.
// The loop exits when ctx is canceled.
func (d *Dealer) StartShift(ctx context.Context) error {
	events, err := d.store.Subscribe(ctx)
	if err != nil {
		return err
	}

	go d.runLoop(ctx, events)
	return nil
}

func (d *Dealer) runLoop(ctx context.Context, events <-chan store.Event) {
	logrus.Debug("starting dealer run loop")
	for {
		select {
		case event, ok := <-events:
			if !ok {
				logrus.Debug("terminating dealer run loop")
				return
			}

			d.handleEvent(ctx, event)
		case fire := <-d.fired:
			d.handleFire(ctx, fire)
		case <-ctx.Done():
			logrus.Debug("terminating dealer run loop")
			return
		}
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) handleEvent(ctx context.Context, event store.Event) {
	if event.Room == nil {
		d.dropRoom(event.RoomID)
		return
	}

	room := event.Room
	state, ok := d.rooms[room.ID]
	if !ok {
		state = &roomState{}
		d.rooms[room.ID] = state
	}

	switch {
	case room.Phase == game.PhaseLobby:
		d.disarm(state)
		if room.Round >= 1 {
			d.run(ctx, room.ID, "start round", d.engine.StartRound)
		}
	case room.Phase.IsPlacement():
		d.arm(room, state)
		d.scheduleBots(room, state)
		if room.AllActivePlayersPlaced() {
			d.run(ctx, room.ID, "advance", d.engine.CheckAndAdvance)
		}
	case room.Phase == game.PhaseScoring:
		d.disarm(state)
		d.run(ctx, room.ID, "score round", d.engine.ScoreRound)
	case room.Phase == game.PhaseComplete:
		d.arm(room, state)
	case room.Phase == game.PhaseMatchComplete:
		d.disarm(state)
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) handleFire(ctx context.Context, fire timerFire) {
	state, ok := d.rooms[fire.roomID]
	if !ok || state.deadline == nil || !state.deadline.Equal(fire.deadline) {
		// a newer deadline superseded this timer
		return
	}

	state.deadline = nil
	state.timer = nil

	d.run(ctx, fire.roomID, "timeout", d.engine.HandleTimeout)
	d.run(ctx, fire.roomID, "advance", d.engine.CheckAndAdvance)
	d.run(ctx, fire.roomID, "reset round", d.engine.ResetRound)
}

// arm schedules a timer for the room's phase deadline, replacing any armed
// timer whose deadline no longer matches
func (d *Dealer) arm(room *game.Room, state *roomState) {
	if room.PhaseDeadline == nil {
		d.disarm(state)
		return
	}

	if state.deadline != nil && state.deadline.Equal(*room.PhaseDeadline) {
		return
	}

	d.disarm(state)

	deadline := *room.PhaseDeadline
	state.deadline = &deadline
	state.timer = time.AfterFunc(time.Until(deadline), func() {
		d.fired <- timerFire{roomID: room.ID, deadline: deadline}
	})
}

func (d *Dealer) disarm(state *roomState) {
	if state.timer != nil {
		state.timer.Stop()
	}

	state.deadline = nil
	state.timer = nil
}

// scheduleBots queues one delayed bot pass per street
func (d *Dealer) scheduleBots(room *game.Room, state *roomState) {
	pending := false
	for _, player := range room.OrderedPlayers() {
		if player.IsBot && !player.Fouled && !player.HasPlaced() {
			pending = true
			break
		}
	}

	if !pending {
		return
	}

	key := fmt.Sprintf("%s:%d:%d", room.Phase, room.Round, room.Street)
	if state.botKey == key {
		return
	}

	state.botKey = key
	roomID := room.ID
	time.AfterFunc(d.botDelay, func() {
		d.placeBots(roomID)
	})
}

// placeBots runs the bot strategy for every bot still holding cards
func (d *Dealer) placeBots(roomID string) {
	ctx := context.Background()

	room, err := d.engine.Room(ctx, roomID)
	if err != nil {
		if err != engine.ErrRoomNotFound {
			logrus.WithField("room", roomID).WithError(err).Error("could not load room for bots")
		}
		return
	}

	for _, player := range room.OrderedPlayers() {
		if !player.IsBot || player.Fouled || player.HasPlaced() {
			continue
		}

		if err := d.engine.PlaceBotCards(ctx, roomID, player.UID); err != nil {
			logrus.WithFields(logrus.Fields{
				"room": roomID,
				"bot":  player.UID,
			}).WithError(err).Error("could not place bot cards")
		}
	}

	if err := d.engine.CheckAndAdvance(ctx, roomID); err != nil {
		logrus.WithField("room", roomID).WithError(err).Error("could not advance")
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) dropRoom(roomID string) {
	if state, ok := d.rooms[roomID]; ok {
		d.disarm(state)
		delete(d.rooms, roomID)
	}
}

// run executes an engine operation off the run loop so a slow store never
// stalls event handling
func (d *Dealer) run(ctx context.Context, roomID, op string, fn func(ctx context.Context, roomID string) error) {
	go func() {
		if err := fn(ctx, roomID); err != nil {
			logrus.WithFields(logrus.Fields{
				"room": roomID,
				"op":   op,
			}).WithError(err).Error("engine operation failed")
		}
	}()
}
