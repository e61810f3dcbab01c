// Package memory implements the repository interfaces in process memory,
// for running the decision server without Postgres or Redis.
package memory

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freeeve/luxbot/internal/model"
)

// Store holds matches, turns and cached match state. The zero value is not
// usable; call New.
type Store struct {
	mu        sync.RWMutex
	matches   map[string]*model.Match
	turns     map[string]map[int]model.Turn
	latest    map[string]json.RawMessage
	explorers map[string]string
}

// New returns an empty store.
func New() *Store {
	return &Store{
		matches:   make(map[string]*model.Match),
		turns:     make(map[string]map[int]model.Turn),
		latest:    make(map[string]json.RawMessage),
		explorers: make(map[string]string),
	}
}

func (s *Store) Create(_ context.Context, clientID, variant string, player, width, height int) (*model.Match, error) {
	m := &model.Match{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Variant:   variant,
		Player:    player,
		Width:     width,
		Height:    height,
		Status:    model.MatchActive,
		LastTurn:  -1,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.matches[m.ID] = m
	s.mu.Unlock()
	out := *m
	return &out, nil
}

func (s *Store) FindByID(_ context.Context, id string) (*model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, nil
	}
	out := *m
	return &out, nil
}

func (s *Store) ListByClient(_ context.Context, clientID string) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Match
	for _, m := range s.matches {
		if m.ClientID == clientID {
			out = append(out, *m)
		}
	}
	slices.SortFunc(out, func(a, b model.Match) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (s *Store) UpdateLastTurn(_ context.Context, id string, turn int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.matches[id]; ok && turn > m.LastTurn {
		m.LastTurn = turn
	}
	return nil
}

func (s *Store) SetFinished(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.matches[id]; ok {
		now := time.Now().UTC()
		m.Status = model.MatchFinished
		m.FinishedAt = &now
	}
	return nil
}

func (s *Store) SaveTurn(_ context.Context, t *model.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byTurn, ok := s.turns[t.MatchID]
	if !ok {
		byTurn = make(map[int]model.Turn)
		s.turns[t.MatchID] = byTurn
	}
	stored := *t
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	byTurn[t.Turn] = stored
	return nil
}

func (s *Store) ListTurns(_ context.Context, matchID string) ([]model.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Turn
	for _, t := range s.turns[matchID] {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b model.Turn) int { return a.Turn - b.Turn })
	return out, nil
}

func (s *Store) FindTurn(_ context.Context, matchID string, turn int) (*model.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.turns[matchID][turn]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *Store) SetLatestTurn(_ context.Context, matchID string, turn json.RawMessage) error {
	s.mu.Lock()
	s.latest[matchID] = slices.Clone(turn)
	s.mu.Unlock()
	return nil
}

func (s *Store) GetLatestTurn(_ context.Context, matchID string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest[matchID], nil
}

func (s *Store) SetExplorer(_ context.Context, matchID, unitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if unitID == "" {
		delete(s.explorers, matchID)
	} else {
		s.explorers[matchID] = unitID
	}
	return nil
}

func (s *Store) GetExplorer(_ context.Context, matchID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.explorers[matchID], nil
}

func (s *Store) DeleteMatchData(_ context.Context, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.latest, matchID)
	delete(s.explorers, matchID)
	return nil
}
