package mux

import (
	"errors"
	"net/http"

	gmux "github.com/gorilla/mux"

	"pineapplepoker-server/pkg/deck"
	"pineapplepoker-server/pkg/game"
	"pineapplepoker-server/pkg/token"
)

// roomIDLength is the length of generated room codes
const roomIDLength = 8

func requestUID(r *http.Request) string {
	return r.Context().Value(ctxUIDKey).(string)
}

type postRoomPayload struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

func (m *Mux) postRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postRoomPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if pp.DisplayName == "" {
			writeJSONError(w, http.StatusBadRequest, errors.New("displayName is required"))
			return
		}

		roomID := pp.RoomID
		if roomID == "" {
			generated, err := token.Generate(roomIDLength)
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, err)
				return
			}

			roomID = generated
		}

		uid := requestUID(r)
		room, err := m.engine.Join(r.Context(), roomID, uid, pp.DisplayName, true)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, room.Censored(uid))
	}
}

func (m *Mux) getRoomID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := requestUID(r)
		room, err := m.engine.Room(r.Context(), gmux.Vars(r)["id"])
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, room.Censored(uid))
	}
}

type postRoomIDJoinPayload struct {
	DisplayName string `json:"displayName"`
}

func (m *Mux) postRoomIDJoin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postRoomIDJoinPayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		if pp.DisplayName == "" {
			writeJSONError(w, http.StatusBadRequest, errors.New("displayName is required"))
			return
		}

		uid := requestUID(r)
		room, err := m.engine.Join(r.Context(), gmux.Vars(r)["id"], uid, pp.DisplayName, false)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, room.Censored(uid))
	}
}

func (m *Mux) postRoomIDLeave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.engine.Leave(r.Context(), gmux.Vars(r)["id"], requestUID(r)); err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK())
	}
}

func (m *Mux) postRoomIDStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.engine.StartMatch(r.Context(), gmux.Vars(r)["id"], requestUID(r)); err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK())
	}
}

type postRoomIDPlacePayload struct {
	Placements []game.Placement `json:"placements"`
	Discard    *deck.Card       `json:"discard"`
}

func (m *Mux) postRoomIDPlace() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pp postRoomIDPlacePayload
		if !decodeRequest(w, r, &pp) {
			return
		}

		for _, placement := range pp.Placements {
			if !placement.Row.Valid() {
				writeJSONError(w, http.StatusBadRequest, errors.New("unknown row"))
				return
			}
		}

		uid := requestUID(r)
		room, err := m.engine.Place(r.Context(), gmux.Vars(r)["id"], uid, pp.Placements, pp.Discard)
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, room.Censored(uid))
	}
}

func (m *Mux) postRoomIDPlayAgain() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.engine.PlayAgain(r.Context(), gmux.Vars(r)["id"], requestUID(r)); err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK())
	}
}

func (m *Mux) postRoomIDBot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		botPlayer, err := m.engine.AddBot(r.Context(), gmux.Vars(r)["id"], requestUID(r))
		if err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, botPlayer)
	}
}

func (m *Mux) deleteRoomIDBot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := gmux.Vars(r)
		if err := m.engine.RemoveBot(r.Context(), vars["id"], requestUID(r), vars["botUid"]); err != nil {
			writeEngineError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusOK())
	}
}

type statusResponse struct {
	Status string `json:"status"`
}

func statusOK() statusResponse {
	return statusResponse{Status: "OK"}
}
