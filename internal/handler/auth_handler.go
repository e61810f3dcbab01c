package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/auth"
)

// AuthHandler issues and refreshes client tokens.
type AuthHandler struct {
	jwtMgr  *auth.JWTManager
	devAuth bool
}

// NewAuthHandler creates an AuthHandler. With devAuth off the dev login
// endpoint answers 404.
func NewAuthHandler(jwtMgr *auth.JWTManager, devAuth bool) *AuthHandler {
	return &AuthHandler{jwtMgr: jwtMgr, devAuth: devAuth}
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := h.jwtMgr.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	tokens, err := h.jwtMgr.GenerateTokenPair(claims.ClientID, claims.Scope)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate tokens")
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

// DevLogin returns a token pair for any client name. The scope defaults
// to bot.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	if !h.devAuth {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	client := r.URL.Query().Get("client")
	if client == "" {
		writeError(w, http.StatusBadRequest, "missing client parameter")
		return
	}
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = auth.ScopeBot
	}

	tokens, err := h.jwtMgr.GenerateTokenPair(client, scope)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown scope")
		return
	}

	log.Info().Str("clientId", client).Str("scope", scope).Msg("Dev token issued")
	writeJSON(w, http.StatusOK, tokens)
}
