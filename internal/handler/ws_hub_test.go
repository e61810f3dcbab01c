package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/freeeve/luxbot/internal/auth"
	"github.com/freeeve/luxbot/internal/service"
)

func newTestConn(clientID string) *WSConn {
	return &WSConn{
		conn:     nil, // no real connection for hub tests
		clientID: clientID,
		send:     make(chan []byte, 256),
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	c := newTestConn("client-1")

	hub.Register(c)
	if hub.ConnectionCount() != 1 {
		t.Errorf("expected 1 connection, got %d", hub.ConnectionCount())
	}

	hub.Unregister(c)
	hub.Unregister(c) // second call is a no-op
	if hub.ConnectionCount() != 0 {
		t.Errorf("expected 0 connections, got %d", hub.ConnectionCount())
	}
}

func TestHubBroadcastToMatch(t *testing.T) {
	hub := NewHub()
	c1 := newTestConn("client-1")
	c2 := newTestConn("client-2")
	c3 := newTestConn("client-3") // not subscribed

	for _, c := range []*WSConn{c1, c2, c3} {
		hub.Register(c)
		defer hub.Unregister(c)
	}
	hub.Subscribe(c1, "match-1")
	hub.Subscribe(c2, "match-1")

	hub.BroadcastMatchEvent("match-1", service.EventTurnDecided, map[string]int{"turn": 3})

	select {
	case msg := <-c1.send:
		var event WSEvent
		json.Unmarshal(msg, &event)
		if event.Type != service.EventTurnDecided || event.MatchID != "match-1" {
			t.Errorf("got %+v", event)
		}
	case <-time.After(time.Second):
		t.Error("c1 did not receive broadcast")
	}

	select {
	case <-c2.send:
	case <-time.After(time.Second):
		t.Error("c2 did not receive broadcast")
	}

	select {
	case <-c3.send:
		t.Error("c3 should not have received broadcast")
	default:
	}
}

func TestHubUnsubscribeAndCleanup(t *testing.T) {
	hub := NewHub()
	c := newTestConn("client-1")
	hub.Register(c)
	hub.Subscribe(c, "match-1")
	hub.Subscribe(c, "match-2")

	hub.Unsubscribe(c, "match-1")
	if hub.MatchSubscriberCount("match-1") != 0 || hub.MatchSubscriberCount("match-2") != 1 {
		t.Errorf("after unsubscribe: %d, %d", hub.MatchSubscriberCount("match-1"), hub.MatchSubscriberCount("match-2"))
	}

	hub.Unregister(c)
	if hub.MatchSubscriberCount("match-2") != 0 {
		t.Error("expected 0 subscribers for match-2 after unregister")
	}
}

func TestHubConcurrentAccess(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestConn("client")
			hub.Register(c)
			hub.Subscribe(c, "match-1")
			hub.BroadcastToMatch("match-1", WSEvent{Type: "test", MatchID: "match-1"})
			hub.Unsubscribe(c, "match-1")
			hub.Unregister(c)
		}()
	}

	wg.Wait()
	if hub.ConnectionCount() != 0 {
		t.Errorf("expected 0 connections after concurrent test, got %d", hub.ConnectionCount())
	}
}

func TestServeWS(t *testing.T) {
	hub := NewHub()
	jwtMgr := auth.NewJWTManager("test-secret")
	srv := httptest.NewServer(http.HandlerFunc(NewWSHandler(hub, jwtMgr, "*").ServeWS))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("dial without token should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dial without token: %v", err)
	}

	token, err := jwtMgr.GenerateAccessToken("watcher", auth.ScopeObserver)
	if err != nil {
		t.Fatal(err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var welcome WSEvent
	if err := conn.ReadJSON(&welcome); err != nil || welcome.Type != "connected" {
		t.Fatalf("welcome: %v %+v", err, welcome)
	}

	if err := conn.WriteJSON(ClientMessage{Action: "subscribe", MatchID: "match-1"}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for hub.MatchSubscriberCount("match-1") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastMatchEvent("match-1", service.EventTurnDecided, map[string]int{"turn": 1})
	var event WSEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != service.EventTurnDecided || event.MatchID != "match-1" {
		t.Errorf("got %+v", event)
	}
}

func TestHubReplaysLatestTurn(t *testing.T) {
	hub := NewHub()
	hub.BroadcastMatchEvent("match-1", service.EventTurnDecided, map[string]int{"turn": 4})
	hub.BroadcastMatchEvent("match-1", service.EventTurnDecided, map[string]int{"turn": 5})

	late := newTestConn("observer-1")
	hub.Register(late)
	defer hub.Unregister(late)
	hub.Subscribe(late, "match-1")

	select {
	case msg := <-late.send:
		var event struct {
			Type string         `json:"type"`
			Data map[string]int `json:"data"`
		}
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if event.Type != service.EventTurnDecided || event.Data["turn"] != 5 {
			t.Errorf("expected replay of turn 5, got %s %v", event.Type, event.Data)
		}
	default:
		t.Fatal("late subscriber should receive the latest turn")
	}
	if len(late.send) != 0 {
		t.Errorf("expected a single replayed frame, got %d more", len(late.send))
	}

	hub.BroadcastMatchEvent("match-1", service.EventMatchFinished, nil)
	<-late.send
	after := newTestConn("observer-2")
	hub.Register(after)
	defer hub.Unregister(after)
	hub.Subscribe(after, "match-1")
	if len(after.send) != 0 {
		t.Error("finished match should not replay a turn")
	}
}
