package handler

import "net/http"

// RegisterMatchRoutes mounts the match API on a mux served under /api/v1.
func RegisterMatchRoutes(api *http.ServeMux, h *MatchHandler) {
	api.HandleFunc("POST /matches", h.CreateMatch)
	api.HandleFunc("GET /matches", h.ListMatches)
	api.HandleFunc("GET /matches/{id}", h.GetMatch)
	api.HandleFunc("POST /matches/{id}/finish", h.FinishMatch)
	api.HandleFunc("POST /matches/{id}/turns", h.SubmitTurn)
	api.HandleFunc("GET /matches/{id}/turns", h.ListTurns)
	api.HandleFunc("GET /matches/{id}/turns/latest", h.LatestTurn)
	api.HandleFunc("GET /matches/{id}/turns/{turn}/observation", h.Observation)
}
