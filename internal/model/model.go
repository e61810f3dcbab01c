package model

import (
	"encoding/json"
	"time"
)

// Match is one game a client plays through the decision service. The
// server keeps one bot agent per match.
type Match struct {
	ID         string     `json:"id"`
	ClientID   string     `json:"client_id"`
	Variant    string     `json:"variant"`
	Player     int        `json:"player"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Status     string     `json:"status"` // active, finished
	LastTurn   int        `json:"last_turn"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Turn is the stored outcome of one decided turn.
type Turn struct {
	MatchID    string          `json:"match_id"`
	Turn       int             `json:"turn"`
	Actions    []string        `json:"actions"`
	Targets    json.RawMessage `json:"targets,omitempty"`
	Passes     int             `json:"passes"`
	Unresolved int             `json:"unresolved"`
	Builders   int             `json:"builders"`
	Explorer   string          `json:"explorer,omitempty"`
	// Observation is the zstd-compressed update lines the turn was decided on.
	Observation []byte    `json:"-"`
	DecisionMs  float64   `json:"decision_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// Match statuses.
const (
	MatchActive   = "active"
	MatchFinished = "finished"
)
