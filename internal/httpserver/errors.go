// internal/httpserver/errors.go
//
// Maps domain errors onto HTTP status codes and stable error codes.
// Response body: {"error":"<code>","message":"<detail>"}.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/worduel/internal/game"
	"github.com/robalobadob/worduel/internal/invite"
	"github.com/robalobadob/worduel/internal/store"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorMapping is checked in order; the first sentinel matched wins.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{store.ErrNotFound, http.StatusNotFound, "not_found"},
	{store.ErrConflict, http.StatusConflict, "conflict"},
	{game.ErrInvalidState, http.StatusUnprocessableEntity, "invalid_state"},
	{game.ErrNotYourTurn, http.StatusForbidden, "not_your_turn"},
	{game.ErrInvalidWord, http.StatusBadRequest, "invalid_word"},
	{game.ErrInvalidGuessFormat, http.StatusBadRequest, "invalid_guess_format"},
	{game.ErrInvalidConfig, http.StatusBadRequest, "invalid_config"},
	{invite.ErrSelfInvite, http.StatusBadRequest, "self_invite"},
	{invite.ErrMessageTooLong, http.StatusBadRequest, "message_too_long"},
	{invite.ErrDuplicatePending, http.StatusConflict, "duplicate_pending"},
	{invite.ErrNotRecipient, http.StatusForbidden, "not_recipient"},
}

// classify returns the status and code for err. Unknown errors are 500.
func classify(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

// writeError renders err as a JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		msg = "internal error"
	}
	writeJSONError(w, status, code, msg)
}

func writeJSONError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
