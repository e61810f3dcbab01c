package handler

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/auth"
	"github.com/freeeve/luxbot/internal/service"
)

// MatchHandler handles match and turn endpoints.
type MatchHandler struct {
	matchSvc    *service.MatchService
	decisionSvc *service.DecisionService
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(matchSvc *service.MatchService, decisionSvc *service.DecisionService) *MatchHandler {
	return &MatchHandler{matchSvc: matchSvc, decisionSvc: decisionSvc}
}

// viewer returns the client ID reads are checked against. Observers may
// read any match.
func viewer(r *http.Request) string {
	if auth.ScopeFromContext(r.Context()) == auth.ScopeObserver {
		return ""
	}
	return auth.ClientIDFromContext(r.Context())
}

// requireBot rejects observer tokens on write endpoints.
func requireBot(w http.ResponseWriter, r *http.Request) bool {
	if auth.ScopeFromContext(r.Context()) != auth.ScopeBot {
		writeError(w, http.StatusForbidden, "bot scope required")
		return false
	}
	return true
}

// CreateMatch handles POST /api/v1/matches
func (h *MatchHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	if !requireBot(w, r) {
		return
	}
	var req struct {
		Variant string `json:"variant,omitempty"`
		Player  int    `json:"player"`
		Width   int    `json:"width"`
		Height  int    `json:"height"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m, err := h.matchSvc.CreateMatch(r.Context(), auth.ClientIDFromContext(r.Context()), req.Variant, req.Player, req.Width, req.Height)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// ListMatches handles GET /api/v1/matches
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matchSvc.ListMatches(r.Context(), auth.ClientIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if matches == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// GetMatch handles GET /api/v1/matches/{id}
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.matchSvc.GetMatch(r.Context(), viewer(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// FinishMatch handles POST /api/v1/matches/{id}/finish
func (h *MatchHandler) FinishMatch(w http.ResponseWriter, r *http.Request) {
	if !requireBot(w, r) {
		return
	}
	if err := h.matchSvc.FinishMatch(r.Context(), auth.ClientIDFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "finished"})
}

// SubmitTurn handles POST /api/v1/matches/{id}/turns
func (h *MatchHandler) SubmitTurn(w http.ResponseWriter, r *http.Request) {
	if !requireBot(w, r) {
		return
	}
	var req struct {
		Player  *int     `json:"player,omitempty"`
		Width   int      `json:"width,omitempty"`
		Height  int      `json:"height,omitempty"`
		Turn    int      `json:"turn"`
		Updates []string `json:"updates"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := h.decisionSvc.DecideTurn(r.Context(), auth.ClientIDFromContext(r.Context()), r.PathValue("id"), service.DecideRequest{
		Player:  req.Player,
		Width:   req.Width,
		Height:  req.Height,
		Turn:    req.Turn,
		Updates: req.Updates,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

// ListTurns handles GET /api/v1/matches/{id}/turns
func (h *MatchHandler) ListTurns(w http.ResponseWriter, r *http.Request) {
	turns, err := h.decisionSvc.ListTurns(r.Context(), viewer(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if turns == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

// LatestTurn handles GET /api/v1/matches/{id}/turns/latest
func (h *MatchHandler) LatestTurn(w http.ResponseWriter, r *http.Request) {
	data, err := h.decisionSvc.LatestTurn(r.Context(), viewer(r), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// Observation handles GET /api/v1/matches/{id}/turns/{turn}/observation
func (h *MatchHandler) Observation(w http.ResponseWriter, r *http.Request) {
	turn, err := strconv.Atoi(r.PathValue("turn"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid turn")
		return
	}
	lines, err := h.decisionSvc.Observation(r.Context(), viewer(r), r.PathValue("id"), turn)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	log.Debug().Str("matchId", r.PathValue("id")).Int("turn", turn).Int("lines", len(lines)).Msg("Observation served")
	writeJSON(w, http.StatusOK, map[string]any{"turn": turn, "updates": lines})
}
