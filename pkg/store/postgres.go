package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"pineapplepoker-server/pkg/deck"
	"pineapplepoker-server/pkg/game"
)

const notifyChannel = "room_change"

// bounded retry for write conflicts
const (
	maxTxAttempts  = 5
	initialBackoff = 50 * time.Millisecond
)

// Postgres is a Store backed by PostgreSQL.
// Room and private documents are stored as jsonb; row locks serialize
// writers per room, and serialization failures are retried with exponential
// backoff. Change notifications ride LISTEN/NOTIFY so independent processes
// observe each other's commits.
type Postgres struct {
	db  *sql.DB
	dsn string
}

// NewPostgres returns a Postgres-backed store.
// The dsn is needed in addition to the pool because LISTEN requires a
// dedicated connection.
func NewPostgres(db *sql.DB, dsn string) *Postgres {
	return &Postgres{
		db:  db,
		dsn: dsn,
	}
}

type postgresTx struct {
	tx       *sql.Tx
	notified map[string]bool
}

// RunTransaction executes fn in a serializable transaction, retrying a
// bounded number of times on write conflict
func (p *Postgres) RunTransaction(ctx context.Context, fn func(tx Tx) error) error {
	backoff := initialBackoff

	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}

		err := p.attempt(ctx, fn)
		if err == nil {
			return nil
		}

		if !isRetryable(err) {
			return err
		}

		lastErr = err
	}

	return fmt.Errorf("transaction failed after %d attempts: %w", maxTxAttempts, lastErr)
}

func (p *Postgres) attempt(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}

	ptx := &postgresTx{tx: tx, notified: make(map[string]bool)}
	if err := fn(ptx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func isRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure and deadlock_detected
		return pqErr.Code == "40001" || pqErr.Code == "40P01"
	}

	return false
}

func (tx *postgresTx) Room(id string) (*game.Room, error) {
	var raw []byte
	row := tx.tx.QueryRow("SELECT doc FROM rooms WHERE id = $1 FOR UPDATE", id)
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRoomNotFound
		}

		return nil, err
	}

	return decodeRoom(raw)
}

func (tx *postgresTx) SetRoom(room *game.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(room)
	if err != nil {
		return err
	}

	_, err = tx.tx.Exec(`
INSERT INTO rooms (id, doc, revision, updated_at)
VALUES ($1, $2, 1, NOW())
ON CONFLICT (id) DO UPDATE SET doc = $2, revision = rooms.revision + 1, updated_at = NOW()`,
		room.ID, raw)
	if err != nil {
		return err
	}

	return tx.notify(room.ID)
}

func (tx *postgresTx) DeleteRoom(id string) error {
	if _, err := tx.tx.Exec("DELETE FROM rooms WHERE id = $1", id); err != nil {
		return err
	}

	return tx.notify(id)
}

func (tx *postgresTx) PlayerDeck(roomID, uid string) ([]*deck.Card, error) {
	return tx.private(roomID, uid, kindDeck)
}

func (tx *postgresTx) SetPlayerDeck(roomID, uid string, cards []*deck.Card) error {
	return tx.setPrivate(roomID, uid, kindDeck, cards)
}

func (tx *postgresTx) PlayerHand(roomID, uid string) ([]*deck.Card, error) {
	return tx.private(roomID, uid, kindHand)
}

func (tx *postgresTx) SetPlayerHand(roomID, uid string, cards []*deck.Card) error {
	return tx.setPrivate(roomID, uid, kindHand, cards)
}

func (tx *postgresTx) DeletePlayerDocs(roomID, uid string) error {
	_, err := tx.tx.Exec("DELETE FROM player_docs WHERE room_id = $1 AND uid = $2", roomID, uid)
	return err
}

func (tx *postgresTx) private(roomID, uid, kind string) ([]*deck.Card, error) {
	var raw []byte
	row := tx.tx.QueryRow(
		"SELECT doc FROM player_docs WHERE room_id = $1 AND uid = $2 AND kind = $3 FOR UPDATE",
		roomID, uid, kind)
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return []*deck.Card{}, nil
		}

		return nil, err
	}

	return decodeCards(raw)
}

func (tx *postgresTx) setPrivate(roomID, uid, kind string, cards []*deck.Card) error {
	raw, err := json.Marshal(cardsDoc{Cards: cards})
	if err != nil {
		return err
	}

	_, err = tx.tx.Exec(`
INSERT INTO player_docs (room_id, uid, kind, doc)
VALUES ($1, $2, $3, $4)
ON CONFLICT (room_id, uid, kind) DO UPDATE SET doc = $4`,
		roomID, uid, kind, raw)
	return err
}

// notify queues a change notification that fires when the transaction commits
func (tx *postgresTx) notify(roomID string) error {
	if tx.notified[roomID] {
		return nil
	}

	tx.notified[roomID] = true
	_, err := tx.tx.Exec("SELECT pg_notify($1, $2)", notifyChannel, roomID)
	return err
}

// Subscribe listens for committed room changes across all processes
func (p *Postgres) Subscribe(ctx context.Context) (<-chan Event, error) {
	listener := pq.NewListener(p.dsn, 10*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			logrus.WithError(err).Warn("room change listener event")
		}
	})

	if err := listener.Listen(notifyChannel); err != nil {
		_ = listener.Close()
		return nil, err
	}

	ch := make(chan Event, 256)
	go func() {
		defer close(ch)
		defer func() {
			_ = listener.Close()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case notification, ok := <-listener.Notify:
				if !ok {
					return
				}

				if notification == nil {
					// connection re-established; events may have been missed
					continue
				}

				event, err := p.loadEvent(ctx, notification.Extra)
				if err != nil {
					logrus.WithError(err).WithField("room", notification.Extra).Error("could not load room for change event")
					continue
				}

				select {
				case ch <- event:
				case <-ctx.Done():
					return
				}
			case <-time.After(90 * time.Second):
				if err := listener.Ping(); err != nil {
					logrus.WithError(err).Error("room change listener ping failed")
					return
				}
			}
		}
	}()

	return ch, nil
}

func (p *Postgres) loadEvent(ctx context.Context, roomID string) (Event, error) {
	var raw []byte
	row := p.db.QueryRowContext(ctx, "SELECT doc FROM rooms WHERE id = $1", roomID)
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return Event{RoomID: roomID}, nil
		}

		return Event{}, err
	}

	room, err := decodeRoom(raw)
	if err != nil {
		return Event{}, err
	}

	return Event{RoomID: roomID, Room: room}, nil
}

// StaleRooms returns ids of rooms not updated since the cutoff
func (p *Postgres) StaleRooms(ctx context.Context, cutoff time.Time) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT id FROM rooms WHERE updated_at < $1", cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Close closes the underlying connection pool
func (p *Postgres) Close() error {
	return p.db.Close()
}
