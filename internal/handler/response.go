package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/logger"
	"github.com/freeeve/luxbot/internal/service"
)

// errorBody is the JSON shape of every error response. Reason is a stable
// identifier bots can branch on without parsing the message.
type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// serviceErrors maps service sentinels to a status and reason, checked in order.
var serviceErrors = []struct {
	err    error
	status int
	reason string
}{
	{service.ErrMatchNotFound, http.StatusNotFound, "match_not_found"},
	{service.ErrTurnNotFound, http.StatusNotFound, "turn_not_found"},
	{service.ErrNotMatchOwner, http.StatusForbidden, "not_match_owner"},
	{service.ErrMatchFinished, http.StatusConflict, "match_finished"},
	{service.ErrStaleTurn, http.StatusConflict, "stale_turn"},
	{service.ErrUnknownVariant, http.StatusBadRequest, "unknown_variant"},
	{service.ErrInvalidPlayer, http.StatusBadRequest, "invalid_player"},
	{service.ErrInvalidSize, http.StatusBadRequest, "invalid_size"},
	{service.ErrBadObservation, http.StatusBadRequest, "bad_observation"},
	{service.ErrMatchMismatch, http.StatusBadRequest, "match_mismatch"},
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Error encoding response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps service errors to HTTP statuses. Anything unmapped
// is logged and reported as a 500 without leaking the message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, se := range serviceErrors {
		if errors.Is(err, se.err) {
			writeJSON(w, se.status, errorBody{Error: err.Error(), Reason: se.reason})
			return
		}
	}
	l := logger.ForRequest(r.Context())
	l.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Reason: "internal"})
}

// decodeJSON reads a single JSON value from the request body. Trailing data
// after the value is rejected so concatenated turn submissions fail loudly.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
