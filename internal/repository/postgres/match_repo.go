package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/freeeve/luxbot/internal/model"
)

// MatchRepo handles match database operations.
type MatchRepo struct {
	db *sql.DB
}

// NewMatchRepo creates a MatchRepo.
func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

const matchColumns = `id, client_id, variant, player, width, height, status, last_turn, created_at, finished_at`

func scanMatch(row interface{ Scan(...any) error }) (*model.Match, error) {
	var m model.Match
	err := row.Scan(&m.ID, &m.ClientID, &m.Variant, &m.Player, &m.Width, &m.Height,
		&m.Status, &m.LastTurn, &m.CreatedAt, &m.FinishedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new active match.
func (r *MatchRepo) Create(ctx context.Context, clientID, variant string, player, width, height int) (*model.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx,
		`INSERT INTO matches (client_id, variant, player, width, height)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+matchColumns,
		clientID, variant, player, width, height,
	))
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	return m, nil
}

// FindByID returns a match by ID, or nil when it does not exist.
func (r *MatchRepo) FindByID(ctx context.Context, id string) (*model.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find match: %w", err)
	}
	return m, nil
}

// ListByClient returns a client's matches, newest first.
func (r *MatchRepo) ListByClient(ctx context.Context, clientID string) ([]model.Match, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// UpdateLastTurn records the most recent decided turn.
func (r *MatchRepo) UpdateLastTurn(ctx context.Context, id string, turn int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE matches SET last_turn = GREATEST(last_turn, $2) WHERE id = $1`, id, turn)
	if err != nil {
		return fmt.Errorf("update last turn: %w", err)
	}
	return nil
}

// SetFinished marks a match as finished.
func (r *MatchRepo) SetFinished(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE matches SET status = 'finished', finished_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("set finished: %w", err)
	}
	return nil
}
