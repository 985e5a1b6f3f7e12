package mux

import (
	"net/http"

	"github.com/google/uuid"

	"pineapplepoker-server/internal/jwt"
)

type postAuthResponse struct {
	UID string `json:"uid"`
	JWT string `json:"jwt"`
}

// postAuth mints an identity for an anonymous player.
// The uid lives only inside the signed token; there are no accounts.
func (m *Mux) postAuth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := "player-" + uuid.New().String()
		signed, err := jwt.Sign(uid)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusCreated, postAuthResponse{
			UID: uid,
			JWT: signed,
		})
	}
}
