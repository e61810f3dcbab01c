package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Key patterns for per-match state.
func latestTurnKey(matchID string) string { return "match:" + matchID + ":latest" }
func explorerKey(matchID string) string   { return "match:" + matchID + ":explorer" }

// SetLatestTurn stores the most recent decided turn JSON.
func (c *Client) SetLatestTurn(ctx context.Context, matchID string, turn json.RawMessage) error {
	return c.rdb.Set(ctx, latestTurnKey(matchID), []byte(turn), c.ttl).Err()
}

// GetLatestTurn retrieves the most recent decided turn, or nil.
func (c *Client) GetLatestTurn(ctx context.Context, matchID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, latestTurnKey(matchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest turn: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetExplorer remembers the match's explorer unit so a restarted server can
// restore it. An empty unit ID clears the entry.
func (c *Client) SetExplorer(ctx context.Context, matchID, unitID string) error {
	if unitID == "" {
		return c.rdb.Del(ctx, explorerKey(matchID)).Err()
	}
	return c.rdb.Set(ctx, explorerKey(matchID), unitID, c.ttl).Err()
}

// GetExplorer returns the remembered explorer, or "" when none is set.
func (c *Client) GetExplorer(ctx context.Context, matchID string) (string, error) {
	id, err := c.rdb.Get(ctx, explorerKey(matchID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get explorer: %w", err)
	}
	return id, nil
}

// DeleteMatchData removes all Redis data for a match.
func (c *Client) DeleteMatchData(ctx context.Context, matchID string) error {
	return c.rdb.Del(ctx, latestTurnKey(matchID), explorerKey(matchID)).Err()
}
