package mux

import (
	"context"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"

	"pineapplepoker-server/internal/jwt"
	"pineapplepoker-server/pkg/engine"
	"pineapplepoker-server/pkg/store"
)

type ctxKey int

const ctxUIDKey ctxKey = iota

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	engine  *engine.Engine
	version string
	hub     *wsHub

	// store for testing purposes
	authRouter *gmux.Router
}

// NewMux returns a new HTTP mux
func NewMux(ctx context.Context, version string, e *engine.Engine, s store.Store) (*Mux, error) {
	hub := newWsHub(e, s)
	if err := hub.start(ctx); err != nil {
		return nil, err
	}

	this := &Mux{
		Router:  gmux.NewRouter(),
		engine:  e,
		version: version,
		hub:     hub,
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodPost).Path("/auth").Handler(this.postAuth())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		r.Methods(http.MethodPost).Path("/room").Handler(this.postRoom())

		rr := r.PathPrefix("/room/{id:[A-Za-z0-9_-]+}").Subrouter()
		rr.Methods(http.MethodGet).Path("").Handler(this.getRoomID())
		rr.Methods(http.MethodGet).Path("/ws").Handler(this.getRoomIDWS())
		rr.Methods(http.MethodPost).Path("/join").Handler(this.postRoomIDJoin())
		rr.Methods(http.MethodPost).Path("/leave").Handler(this.postRoomIDLeave())
		rr.Methods(http.MethodPost).Path("/start").Handler(this.postRoomIDStart())
		rr.Methods(http.MethodPost).Path("/place").Handler(this.postRoomIDPlace())
		rr.Methods(http.MethodPost).Path("/play-again").Handler(this.postRoomIDPlayAgain())
		rr.Methods(http.MethodPost).Path("/bot").Handler(this.postRoomIDBot())
		rr.Methods(http.MethodDelete).Path("/bot/{botUid}").Handler(this.deleteRoomIDBot())
	}

	return this, nil
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		uid, err := jwt.ValidUID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxUIDKey, uid)
		w.Header().Set("PineapplePoker-UID", uid)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}
