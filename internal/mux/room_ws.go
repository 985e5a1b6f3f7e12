package mux

import (
	"context"
	"net/http"
	"sync"
	"time"

	gmux "github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"pineapplepoker-server/pkg/engine"
	"pineapplepoker-server/pkg/store"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

// wsResponse is the envelope for every message pushed to a client
type wsResponse struct {
	Key  string      `json:"key"`
	Data interface{} `json:"data,omitempty"`
}

// wsClient is a single websocket subscriber to a room
type wsClient struct {
	conn   *websocket.Conn
	uid    string
	roomID string
	send   chan *wsResponse
	close  chan string
}

// wsHub fans committed room changes out to connected websocket clients.
// Snapshots are censored per recipient so nobody sees another player's
// undealt cards.
type wsHub struct {
	engine *engine.Engine

	lock    sync.RWMutex
	clients map[string]map[*wsClient]bool
	store   store.Store
}

func newWsHub(e *engine.Engine, s store.Store) *wsHub {
	return &wsHub{
		engine:  e,
		clients: make(map[string]map[*wsClient]bool),
		store:   s,
	}
}

func (h *wsHub) start(ctx context.Context) error {
	events, err := h.store.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for event := range events {
			h.broadcast(event)
		}
	}()

	return nil
}

func (h *wsHub) broadcast(event store.Event) {
	h.lock.RLock()
	clients := make([]*wsClient, 0, len(h.clients[event.RoomID]))
	for client := range h.clients[event.RoomID] {
		clients = append(clients, client)
	}
	h.lock.RUnlock()

	for _, client := range clients {
		if event.Room == nil {
			select {
			case client.close <- "room closed":
			default:
			}
			continue
		}

		client.trySend(&wsResponse{
			Key:  "roomState",
			Data: event.Room.Censored(client.uid),
		})
	}
}

func (h *wsHub) register(client *wsClient) {
	h.lock.Lock()
	if h.clients[client.roomID] == nil {
		h.clients[client.roomID] = make(map[*wsClient]bool)
	}
	h.clients[client.roomID][client] = true
	h.lock.Unlock()
}

func (h *wsHub) unregister(client *wsClient) {
	h.lock.Lock()
	delete(h.clients[client.roomID], client)
	if len(h.clients[client.roomID]) == 0 {
		delete(h.clients, client.roomID)
	}
	h.lock.Unlock()
}

// trySend drops the message rather than block the hub on a slow client
func (c *wsClient) trySend(msg *wsResponse) {
	select {
	case c.send <- msg:
	default:
		logrus.WithField("uid", c.uid).Warn("dropping message to slow client")
	}
}

func (m *Mux) getRoomIDWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		roomID := gmux.Vars(r)["id"]
		uid := requestUID(r)

		room, err := m.engine.Room(r.Context(), roomID)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connection")
			return
		}

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		client := &wsClient{
			conn:   conn,
			uid:    uid,
			roomID: roomID,
			send:   make(chan *wsResponse, 32),
			close:  make(chan string, 1),
		}

		m.hub.register(client)
		client.trySend(&wsResponse{
			Key:  "roomState",
			Data: room.Censored(uid),
		})

		waitForCloseFrame := make(chan bool)
		defer func() {
			m.hub.unregister(client)
			_ = conn.Close()
			close(waitForCloseFrame)
		}()

		go m.webSocketWriteLoop(client, waitForCloseFrame)
		m.webSocketReadLoop(client)
	}
}

func (m *Mux) webSocketWriteLoop(client *wsClient, waitForCloseFrame chan bool) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case reason := <-client.close:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = client.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))

			// wait for the close frame
			select {
			case <-waitForCloseFrame:
			case <-time.After(time.Second):
			}
			return
		case msg, ok := <-client.send:
			if !ok {
				return
			}

			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).WithField("uid", client.uid).Error("could not write message")
				return
			}
		}
	}
}

// webSocketReadLoop discards inbound frames; actions arrive over REST.
// Reading keeps the pong handler serviced and detects the close.
func (m *Mux) webSocketReadLoop(client *wsClient) {
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.WithError(err).WithField("uid", client.uid).Debug("websocket closed unexpectedly")
			}

			return
		}
	}
}
