package repository

import (
	"context"
	"encoding/json"

	"github.com/freeeve/luxbot/internal/model"
)

// MatchRepository defines match data operations. Lookups of a missing
// match return (nil, nil).
type MatchRepository interface {
	Create(ctx context.Context, clientID, variant string, player, width, height int) (*model.Match, error)
	FindByID(ctx context.Context, id string) (*model.Match, error)
	ListByClient(ctx context.Context, clientID string) ([]model.Match, error)
	UpdateLastTurn(ctx context.Context, id string, turn int) error
	SetFinished(ctx context.Context, id string) error
}

// TurnRepository defines turn history operations.
type TurnRepository interface {
	SaveTurn(ctx context.Context, t *model.Turn) error
	ListTurns(ctx context.Context, matchID string) ([]model.Turn, error)
	FindTurn(ctx context.Context, matchID string, turn int) (*model.Turn, error)
}

// TurnCache defines live per-match state operations (Redis).
type TurnCache interface {
	SetLatestTurn(ctx context.Context, matchID string, turn json.RawMessage) error
	GetLatestTurn(ctx context.Context, matchID string) (json.RawMessage, error)
	SetExplorer(ctx context.Context, matchID, unitID string) error
	GetExplorer(ctx context.Context, matchID string) (string, error)
	DeleteMatchData(ctx context.Context, matchID string) error
}
