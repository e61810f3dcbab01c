package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/bot"
	"github.com/freeeve/luxbot/internal/model"
	"github.com/freeeve/luxbot/internal/repository"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrMatchFinished  = errors.New("match is finished")
	ErrNotMatchOwner  = errors.New("match belongs to another client")
	ErrUnknownVariant = errors.New("unknown bot variant")
	ErrInvalidPlayer  = errors.New("player must be 0 or 1")
	ErrInvalidSize    = errors.New("map width and height must be positive")
)

// MatchService handles the match lifecycle.
type MatchService struct {
	matchRepo   repository.MatchRepository
	cache       repository.TurnCache
	pool        *AgentPool
	broadcaster Broadcaster
	policies    map[string]bot.Policy
}

// NewMatchService creates a MatchService. A nil policies map means the
// built-in presets.
func NewMatchService(
	matchRepo repository.MatchRepository,
	cache repository.TurnCache,
	pool *AgentPool,
	broadcaster Broadcaster,
	policies map[string]bot.Policy,
) *MatchService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	if policies == nil {
		policies = bot.Presets()
	}
	return &MatchService{matchRepo: matchRepo, cache: cache, pool: pool, broadcaster: broadcaster, policies: policies}
}

// CreateMatch registers a new match. An empty variant selects the default.
func (s *MatchService) CreateMatch(ctx context.Context, clientID, variant string, player, width, height int) (*model.Match, error) {
	if variant == "" {
		variant = bot.DefaultVariant
	}
	if _, ok := s.policies[variant]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, variant)
	}
	if player != 0 && player != 1 {
		return nil, ErrInvalidPlayer
	}
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}

	m, err := s.matchRepo.Create(ctx, clientID, variant, player, width, height)
	if err != nil {
		return nil, err
	}
	log.Info().Str("matchId", m.ID).Str("clientId", clientID).Str("variant", variant).
		Int("player", player).Int("width", width).Int("height", height).Msg("Match created")
	return m, nil
}

// GetMatch returns a match visible to clientID. An empty clientID skips
// the ownership check (observers).
func (s *MatchService) GetMatch(ctx context.Context, clientID, matchID string) (*model.Match, error) {
	return loadMatch(ctx, s.matchRepo, clientID, matchID)
}

// ListMatches returns the client's matches, newest first.
func (s *MatchService) ListMatches(ctx context.Context, clientID string) ([]model.Match, error) {
	return s.matchRepo.ListByClient(ctx, clientID)
}

// FinishMatch closes a match, drops its agent and cached state.
func (s *MatchService) FinishMatch(ctx context.Context, clientID, matchID string) error {
	m, err := loadMatch(ctx, s.matchRepo, clientID, matchID)
	if err != nil {
		return err
	}
	if m.Status == model.MatchFinished {
		return ErrMatchFinished
	}
	if err := s.matchRepo.SetFinished(ctx, matchID); err != nil {
		return err
	}
	s.pool.Remove(matchID)
	if err := s.cache.DeleteMatchData(ctx, matchID); err != nil {
		log.Warn().Err(err).Str("matchId", matchID).Msg("Failed to clear match cache")
	}

	s.broadcaster.BroadcastMatchEvent(matchID, EventMatchFinished, map[string]any{
		"last_turn": m.LastTurn,
	})
	log.Info().Str("matchId", matchID).Int("lastTurn", m.LastTurn).Msg("Match finished")
	return nil
}

func loadMatch(ctx context.Context, repo repository.MatchRepository, clientID, matchID string) (*model.Match, error) {
	m, err := repo.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if clientID != "" && m.ClientID != clientID {
		return nil, ErrNotMatchOwner
	}
	return m, nil
}
