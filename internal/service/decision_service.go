package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/archive"
	"github.com/freeeve/luxbot/internal/bot"
	"github.com/freeeve/luxbot/internal/logger"
	"github.com/freeeve/luxbot/internal/model"
	"github.com/freeeve/luxbot/internal/repository"
	"github.com/freeeve/luxbot/pkg/lux"
)

var (
	ErrBadObservation = errors.New("invalid observation")
	ErrStaleTurn      = errors.New("turn is older than the last decided turn")
	ErrMatchMismatch  = errors.New("observation does not match the match settings")
	ErrTurnNotFound   = errors.New("turn not found")
)

// DecideRequest is one turn's observation as sent by a kit client. Player,
// Width and Height are optional; when set they must agree with the match.
type DecideRequest struct {
	Player  *int
	Width   int
	Height  int
	Turn    int
	Updates []string
}

// DecisionService runs the bot for each submitted turn and records the result.
type DecisionService struct {
	matchRepo   repository.MatchRepository
	turnRepo    repository.TurnRepository
	cache       repository.TurnCache
	pool        *AgentPool
	broadcaster Broadcaster
	policies    map[string]bot.Policy
}

// NewDecisionService creates a DecisionService. A nil policies map means
// the built-in presets.
func NewDecisionService(
	matchRepo repository.MatchRepository,
	turnRepo repository.TurnRepository,
	cache repository.TurnCache,
	pool *AgentPool,
	broadcaster Broadcaster,
	policies map[string]bot.Policy,
) *DecisionService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	if policies == nil {
		policies = bot.Presets()
	}
	return &DecisionService{
		matchRepo:   matchRepo,
		turnRepo:    turnRepo,
		cache:       cache,
		pool:        pool,
		broadcaster: broadcaster,
		policies:    policies,
	}
}

// DecideTurn decodes the observation, decides the turn with the match's
// agent, then persists, caches and broadcasts the outcome.
func (s *DecisionService) DecideTurn(ctx context.Context, clientID, matchID string, req DecideRequest) (*model.Turn, error) {
	m, err := loadMatch(ctx, s.matchRepo, clientID, matchID)
	if err != nil {
		return nil, err
	}
	if err := checkTurn(m, req.Turn); err != nil {
		return nil, err
	}
	if (req.Player != nil && *req.Player != m.Player) ||
		(req.Width != 0 && req.Width != m.Width) ||
		(req.Height != 0 && req.Height != m.Height) {
		return nil, ErrMatchMismatch
	}

	gs, err := lux.DecodeUpdates(m.Player, m.Width, m.Height, req.Turn, req.Updates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadObservation, err)
	}

	agent := s.pool.acquire(matchID, func() bot.Strategy {
		return bot.StrategyForVariant(m.Variant, s.policies)
	})
	defer agent.mu.Unlock()

	// A newer turn may have been recorded while this one waited for the agent.
	if m, err = loadMatch(ctx, s.matchRepo, clientID, matchID); err != nil {
		return nil, err
	}
	if err := checkTurn(m, req.Turn); err != nil {
		return nil, err
	}

	mem, remembers := agent.strategy.(bot.ExplorerMemory)
	if agent.fresh {
		agent.fresh = false
		if remembers {
			s.restoreExplorer(ctx, matchID, mem)
		}
	}
	var before string
	if remembers {
		before = mem.Explorer()
	}

	start := time.Now()
	res := agent.strategy.Decide(gs)
	elapsed := time.Since(start)

	l := logger.ForMatch(ctx, matchID)
	if remembers && res.Explorer != before {
		if err := s.cache.SetExplorer(ctx, matchID, res.Explorer); err != nil {
			l.Warn().Err(err).Msg("Failed to cache explorer")
		}
	}

	turn, err := s.record(ctx, m, req, res, elapsed)
	if err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastMatchEvent(matchID, EventTurnDecided, turn)
	l.Debug().Int("turn", req.Turn).Int("actions", len(turn.Actions)).
		Float64("ms", turn.DecisionMs).Msg("Turn recorded")
	return turn, nil
}

// checkTurn rejects turns for finished matches and turns older than the
// last recorded one. Repeating the last turn is allowed as a retry.
func checkTurn(m *model.Match, turn int) error {
	if m.Status == model.MatchFinished {
		return ErrMatchFinished
	}
	if turn < m.LastTurn {
		return fmt.Errorf("%w: got %d, last %d", ErrStaleTurn, turn, m.LastTurn)
	}
	return nil
}

func (s *DecisionService) restoreExplorer(ctx context.Context, matchID string, mem bot.ExplorerMemory) {
	l := logger.ForMatch(ctx, matchID)
	id, err := s.cache.GetExplorer(ctx, matchID)
	if err != nil {
		l.Warn().Err(err).Msg("Failed to load explorer")
		return
	}
	if id != "" {
		mem.RestoreExplorer(id)
		l.Info().Str("unit", id).Msg("Restored explorer")
	}
}

func (s *DecisionService) record(ctx context.Context, m *model.Match, req DecideRequest, res bot.TurnResult, elapsed time.Duration) (*model.Turn, error) {
	actions := make([]string, len(res.Actions))
	for i, a := range res.Actions {
		actions[i] = string(a)
	}
	targets, err := json.Marshal(res.Targets)
	if err != nil {
		return nil, fmt.Errorf("marshal targets: %w", err)
	}
	l := logger.ForMatch(ctx, m.ID)
	obs, err := archive.CompressLines(req.Updates)
	if err != nil {
		l.Warn().Err(err).Msg("Failed to compress observation")
		obs = nil
	}

	turn := &model.Turn{
		MatchID:     m.ID,
		Turn:        req.Turn,
		Actions:     actions,
		Targets:     targets,
		Passes:      res.Passes,
		Unresolved:  res.Unresolved,
		Builders:    res.Builders,
		Explorer:    res.Explorer,
		Observation: obs,
		DecisionMs:  float64(elapsed.Microseconds()) / 1000,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.turnRepo.SaveTurn(ctx, turn); err != nil {
		return nil, err
	}
	if err := s.matchRepo.UpdateLastTurn(ctx, m.ID, req.Turn); err != nil {
		return nil, err
	}

	data, err := json.Marshal(turn)
	if err != nil {
		return nil, fmt.Errorf("marshal turn: %w", err)
	}
	if err := s.cache.SetLatestTurn(ctx, m.ID, data); err != nil {
		l.Warn().Err(err).Msg("Failed to cache latest turn")
	}
	return turn, nil
}

// ListTurns returns the match's decided turns in order.
func (s *DecisionService) ListTurns(ctx context.Context, clientID, matchID string) ([]model.Turn, error) {
	if _, err := loadMatch(ctx, s.matchRepo, clientID, matchID); err != nil {
		return nil, err
	}
	return s.turnRepo.ListTurns(ctx, matchID)
}

// LatestTurn returns the most recent decided turn as JSON, served from the
// cache and rebuilt from history on a miss.
func (s *DecisionService) LatestTurn(ctx context.Context, clientID, matchID string) (json.RawMessage, error) {
	m, err := loadMatch(ctx, s.matchRepo, clientID, matchID)
	if err != nil {
		return nil, err
	}
	data, err := s.cache.GetLatestTurn(ctx, matchID)
	if err != nil {
		log.Warn().Err(err).Str("matchId", matchID).Msg("Latest turn cache unavailable")
	}
	if data != nil {
		return data, nil
	}
	if m.LastTurn < 0 {
		return nil, ErrTurnNotFound
	}
	t, err := s.turnRepo.FindTurn(ctx, matchID, m.LastTurn)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTurnNotFound
	}
	return json.Marshal(t)
}

// Observation returns the update lines a stored turn was decided on.
func (s *DecisionService) Observation(ctx context.Context, clientID, matchID string, turn int) ([]string, error) {
	if _, err := loadMatch(ctx, s.matchRepo, clientID, matchID); err != nil {
		return nil, err
	}
	t, err := s.turnRepo.FindTurn(ctx, matchID, turn)
	if err != nil {
		return nil, err
	}
	if t == nil || t.Observation == nil {
		return nil, ErrTurnNotFound
	}
	lines, err := archive.DecompressLines(t.Observation)
	if err != nil {
		return nil, fmt.Errorf("decompress observation: %w", err)
	}
	return lines, nil
}
