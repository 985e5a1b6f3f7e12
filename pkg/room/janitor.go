package room

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"pineapplepoker-server/pkg/store"
)

// Janitor periodically deletes rooms that have gone quiet
type Janitor struct {
	store     store.Store
	retention time.Duration
	interval  time.Duration
}

// NewJanitor creates a new janitor.
// Rooms untouched for longer than retention are removed every interval.
func NewJanitor(s store.Store, retention, interval time.Duration) *Janitor {
	return &Janitor{
		store:     s,
		retention: retention,
		interval:  interval,
	}
}

// StartShift starts the sweep loop. The loop exits when ctx is canceled.
func (j *Janitor) StartShift(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.Sweep(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Sweep deletes every room whose last update is older than the retention
func (j *Janitor) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-j.retention)
	stale, err := j.store.StaleRooms(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Error("could not list stale rooms")
		return
	}

	for _, roomID := range stale {
		err := j.store.RunTransaction(ctx, func(tx store.Tx) error {
			return tx.DeleteRoom(roomID)
		})
		if err != nil {
			logrus.WithField("room", roomID).WithError(err).Error("could not delete stale room")
			continue
		}

		logrus.WithField("room", roomID).Info("deleted stale room")
	}
}
