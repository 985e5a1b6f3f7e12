package mux

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"pineapplepoker-server/pkg/engine"
)

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// writeEngineError translates engine errors into HTTP status codes.
// Caller mistakes surface as 4xx; everything else is a 500.
func writeEngineError(w http.ResponseWriter, err error) {
	var ue engine.UserError
	if errors.As(err, &ue) {
		switch ue {
		case engine.ErrRoomNotFound:
			writeJSONError(w, http.StatusNotFound, err)
		case engine.ErrNotHost:
			writeJSONError(w, http.StatusForbidden, err)
		case engine.ErrRoomFull, engine.ErrMatchInProgress:
			writeJSONError(w, http.StatusConflict, err)
		default:
			writeJSONError(w, http.StatusBadRequest, err)
		}

		return
	}

	writeJSONError(w, http.StatusInternalServerError, err)
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, errorResponse{
		Message:    msg,
		StatusCode: statusCode,
	})
}
