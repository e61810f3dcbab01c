package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/freeeve/luxbot/internal/model"
)

// TurnRepo handles turn history database operations.
type TurnRepo struct {
	db *sql.DB
}

// NewTurnRepo creates a TurnRepo.
func NewTurnRepo(db *sql.DB) *TurnRepo {
	return &TurnRepo{db: db}
}

const turnColumns = `match_id, turn, actions, targets, passes, unresolved, builders, explorer, observation, decision_ms, created_at`

func scanTurn(row interface{ Scan(...any) error }) (*model.Turn, error) {
	var t model.Turn
	var actions []byte
	var targets, explorer sql.NullString
	err := row.Scan(&t.MatchID, &t.Turn, &actions, &targets, &t.Passes, &t.Unresolved, &t.Builders,
		&explorer, &t.Observation, &t.DecisionMs, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(actions, &t.Actions); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	if targets.Valid {
		t.Targets = json.RawMessage(targets.String)
	}
	t.Explorer = explorer.String
	return &t, nil
}

// SaveTurn inserts a decided turn, replacing an earlier decision for the
// same match and turn number.
func (r *TurnRepo) SaveTurn(ctx context.Context, t *model.Turn) error {
	actions, err := json.Marshal(t.Actions)
	if err != nil {
		return fmt.Errorf("encode actions: %w", err)
	}
	var targets any
	if len(t.Targets) > 0 {
		targets = []byte(t.Targets)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO turns (match_id, turn, actions, targets, passes, unresolved, builders, explorer, observation, decision_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)
		 ON CONFLICT (match_id, turn) DO UPDATE SET
		   actions = EXCLUDED.actions, targets = EXCLUDED.targets, passes = EXCLUDED.passes,
		   unresolved = EXCLUDED.unresolved, builders = EXCLUDED.builders, explorer = EXCLUDED.explorer,
		   observation = EXCLUDED.observation, decision_ms = EXCLUDED.decision_ms`,
		t.MatchID, t.Turn, actions, targets, t.Passes, t.Unresolved, t.Builders, t.Explorer, t.Observation, t.DecisionMs,
	)
	if err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

// ListTurns returns all turns of a match in turn order.
func (r *TurnRepo) ListTurns(ctx context.Context, matchID string) ([]model.Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+turnColumns+` FROM turns WHERE match_id = $1 ORDER BY turn`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, *t)
	}
	return turns, rows.Err()
}

// FindTurn returns one turn, or nil when it was never decided.
func (r *TurnRepo) FindTurn(ctx context.Context, matchID string, turn int) (*model.Turn, error) {
	t, err := scanTurn(r.db.QueryRowContext(ctx,
		`SELECT `+turnColumns+` FROM turns WHERE match_id = $1 AND turn = $2`, matchID, turn))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find turn: %w", err)
	}
	return t, nil
}
