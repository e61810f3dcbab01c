// Package client talks to the decision server over HTTP and WebSocket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/model"
)

// WSEvent mirrors handler.WSEvent for client-side deserialization.
type WSEvent struct {
	Type    string          `json:"type"`
	MatchID string          `json:"match_id"`
	Data    json.RawMessage `json:"data"`
}

// Client is an HTTP+WebSocket client for one bot or observer.
type Client struct {
	name     string
	baseURL  string
	token    string
	wsConn   *websocket.Conn
	events   chan WSEvent
	httpC    *http.Client
	mu       sync.Mutex
	closedWS bool
}

// New creates a client targeting the given server URL.
func New(name, baseURL string) *Client {
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		events:  make(chan WSEvent, 64),
		httpC:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the client name.
func (c *Client) Name() string { return c.name }

// Login authenticates via the dev login endpoint with the given scope.
func (c *Client) Login(ctx context.Context, scope string) error {
	q := url.Values{"client": {c.name}, "scope": {scope}}
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/dev?"+q.Encode(), nil, &tokens); err != nil {
		return fmt.Errorf("dev login: %w", err)
	}
	c.token = tokens.AccessToken
	log.Debug().Str("client", c.name).Str("scope", scope).Msg("Logged in")
	return nil
}

// CreateMatch registers a match and returns it.
func (c *Client) CreateMatch(ctx context.Context, variant string, player, width, height int) (*model.Match, error) {
	body := map[string]any{"variant": variant, "player": player, "width": width, "height": height}
	var m model.Match
	if err := c.do(ctx, http.MethodPost, "/api/v1/matches", body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// SubmitTurn sends one turn's update lines and returns the decided turn.
func (c *Client) SubmitTurn(ctx context.Context, matchID string, turn int, updates []string) (*model.Turn, error) {
	body := map[string]any{"turn": turn, "updates": updates}
	var t model.Turn
	if err := c.do(ctx, http.MethodPost, "/api/v1/matches/"+matchID+"/turns", body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// LatestTurn fetches the most recent decided turn.
func (c *Client) LatestTurn(ctx context.Context, matchID string) (*model.Turn, error) {
	var t model.Turn
	if err := c.do(ctx, http.MethodGet, "/api/v1/matches/"+matchID+"/turns/latest", nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// FinishMatch closes a match.
func (c *Client) FinishMatch(ctx context.Context, matchID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/matches/"+matchID+"/finish", nil, nil)
}

// ConnectWS opens a WebSocket connection and starts listening for events.
func (c *Client) ConnectWS(ctx context.Context) error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/v1/ws?token=" + url.QueryEscape(c.token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("ws dial: %w", err)
	}
	c.wsConn = conn

	go c.readWSLoop()
	return nil
}

// SubscribeMatch sends a subscribe message for the given match.
func (c *Client) SubscribeMatch(matchID string) error {
	msg := map[string]string{"action": "subscribe", "match_id": matchID}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wsConn.WriteJSON(msg)
}

// Events returns the channel of incoming WebSocket events.
func (c *Client) Events() <-chan WSEvent { return c.events }

// CloseWS closes the WebSocket connection.
func (c *Client) CloseWS() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wsConn != nil && !c.closedWS {
		c.closedWS = true
		c.wsConn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.wsConn.Close()
	}
}

func (c *Client) readWSLoop() {
	defer close(c.events)
	for {
		_, msg, err := c.wsConn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closedWS
			c.mu.Unlock()
			if !closed {
				log.Debug().Err(err).Str("client", c.name).Msg("WS read error")
			}
			return
		}
		// the server may batch queued events into one frame
		for _, line := range bytes.Split(msg, []byte("\n")) {
			var event WSEvent
			if err := json.Unmarshal(line, &event); err != nil {
				continue
			}
			c.events <- event
		}
	}
}

// do sends a JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(data)
	} else if method == http.MethodPost {
		bodyReader = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpC.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		se := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		var eb struct {
			Reason string `json:"reason"`
		}
		if json.Unmarshal(body, &eb) == nil {
			se.Reason = eb.Reason
		}
		return se
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
	// Reason is the server's machine-readable error reason, if any.
	Reason string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}
