package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/freeeve/luxbot/internal/auth"
	"github.com/freeeve/luxbot/internal/model"
	"github.com/freeeve/luxbot/internal/repository/memory"
	"github.com/freeeve/luxbot/internal/service"
)

type testAPI struct {
	handler http.Handler
	jwtMgr  *auth.JWTManager
	hub     *Hub
}

func newTestAPI() *testAPI {
	store := memory.New()
	pool := service.NewAgentPool()
	hub := NewHub()
	jwtMgr := auth.NewJWTManager("test-secret")

	api := http.NewServeMux()
	RegisterMatchRoutes(api, NewMatchHandler(
		service.NewMatchService(store, store, pool, hub, nil),
		service.NewDecisionService(store, store, store, pool, hub, nil),
	))
	authHandler := NewAuthHandler(jwtMgr, true)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/dev", authHandler.DevLogin)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", auth.Middleware(jwtMgr)(api)))
	return &testAPI{handler: mux, jwtMgr: jwtMgr, hub: hub}
}

func (a *testAPI) token(t *testing.T, client, scope string) string {
	t.Helper()
	tok, err := a.jwtMgr.GenerateAccessToken(client, scope)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

var observation = []string{
	"rp 0 0",
	"rp 1 0",
	"r wood 6 6 500",
	"u 0 0 u_1 5 5 0 100 0 0",
	"u 0 0 u_2 4 4 0 0 0 0",
	"c 0 c_1 1000 10",
	"ct 0 c_1 0 0 0",
	"ct 0 c_1 1 0 0",
}

func createMatch(t *testing.T, a *testAPI, token string) model.Match {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/matches", token, map[string]any{"player": 0, "width": 8, "height": 8})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}
	var m model.Match
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMatchLifecycle(t *testing.T) {
	a := newTestAPI()
	bot := a.token(t, "client-1", auth.ScopeBot)
	m := createMatch(t, a, bot)
	if m.Variant != "aggro" {
		t.Errorf("variant: got %q", m.Variant)
	}

	rec := a.do(t, http.MethodPost, "/api/v1/matches/"+m.ID+"/turns", bot, map[string]any{
		"player": 0, "width": 8, "height": 8, "turn": 0, "updates": observation,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body)
	}
	var turn struct {
		Actions    []string `json:"actions"`
		Passes     int      `json:"passes"`
		Unresolved int      `json:"unresolved"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &turn); err != nil {
		t.Fatal(err)
	}
	if len(turn.Actions) != 4 || turn.Actions[0] != "bcity u_1" || turn.Passes != 2 {
		t.Errorf("turn: %+v", turn)
	}

	rec = a.do(t, http.MethodGet, "/api/v1/matches/"+m.ID+"/turns/latest", bot, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("latest: %d", rec.Code)
	}
	rec = a.do(t, http.MethodGet, "/api/v1/matches/"+m.ID+"/turns", bot, nil)
	var turns []model.Turn
	json.Unmarshal(rec.Body.Bytes(), &turns)
	if len(turns) != 1 {
		t.Errorf("history: got %d turns", len(turns))
	}

	rec = a.do(t, http.MethodGet, "/api/v1/matches/"+m.ID+"/turns/0/observation", bot, nil)
	var obs struct {
		Updates []string `json:"updates"`
	}
	json.Unmarshal(rec.Body.Bytes(), &obs)
	if rec.Code != http.StatusOK || len(obs.Updates) != len(observation) {
		t.Errorf("observation: %d %v", rec.Code, obs.Updates)
	}

	rec = a.do(t, http.MethodPost, "/api/v1/matches/"+m.ID+"/finish", bot, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("finish: %d", rec.Code)
	}
	rec = a.do(t, http.MethodPost, "/api/v1/matches/"+m.ID+"/turns", bot, map[string]any{"turn": 1, "updates": observation})
	if rec.Code != http.StatusConflict {
		t.Errorf("submit after finish: got %d, want 409", rec.Code)
	}
}

func TestMatchErrors(t *testing.T) {
	a := newTestAPI()
	bot := a.token(t, "client-1", auth.ScopeBot)
	other := a.token(t, "client-2", auth.ScopeBot)
	watcher := a.token(t, "watcher", auth.ScopeObserver)
	m := createMatch(t, a, bot)
	turns := "/api/v1/matches/" + m.ID + "/turns"

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no token", http.MethodGet, "/api/v1/matches", "", nil, http.StatusUnauthorized},
		{"unknown variant", http.MethodPost, "/api/v1/matches", bot, map[string]any{"variant": "nope", "width": 8, "height": 8}, http.StatusBadRequest},
		{"observer cannot create", http.MethodPost, "/api/v1/matches", watcher, map[string]any{"width": 8, "height": 8}, http.StatusForbidden},
		{"missing match", http.MethodGet, "/api/v1/matches/missing", bot, nil, http.StatusNotFound},
		{"other client", http.MethodGet, "/api/v1/matches/" + m.ID, other, nil, http.StatusForbidden},
		{"observer reads", http.MethodGet, "/api/v1/matches/" + m.ID, watcher, nil, http.StatusOK},
		{"observer cannot submit", http.MethodPost, turns, watcher, map[string]any{"updates": observation}, http.StatusForbidden},
		{"bad observation", http.MethodPost, turns, bot, map[string]any{"updates": []string{"zz"}}, http.StatusBadRequest},
		{"size mismatch", http.MethodPost, turns, bot, map[string]any{"width": 32, "updates": observation}, http.StatusBadRequest},
		{"no turns yet", http.MethodGet, turns + "/latest", bot, nil, http.StatusNotFound},
		{"bad turn number", http.MethodGet, turns + "/x/observation", bot, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.want {
				t.Errorf("got %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
		})
	}
}

func TestSubmitTurnBroadcasts(t *testing.T) {
	a := newTestAPI()
	bot := a.token(t, "client-1", auth.ScopeBot)
	m := createMatch(t, a, bot)

	c := newTestConn("watcher")
	a.hub.Register(c)
	defer a.hub.Unregister(c)
	a.hub.Subscribe(c, m.ID)

	rec := a.do(t, http.MethodPost, "/api/v1/matches/"+m.ID+"/turns", bot, map[string]any{"turn": 0, "updates": observation})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d", rec.Code)
	}
	select {
	case msg := <-c.send:
		var event WSEvent
		json.Unmarshal(msg, &event)
		if event.Type != service.EventTurnDecided {
			t.Errorf("event: got %q", event.Type)
		}
	default:
		t.Error("no event broadcast")
	}
}

func TestDevLoginAndRefresh(t *testing.T) {
	a := newTestAPI()

	rec := a.do(t, http.MethodGet, "/auth/dev?client=bot-a&scope=observer", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dev login: %d %s", rec.Code, rec.Body)
	}
	var pair auth.TokenPair
	json.Unmarshal(rec.Body.Bytes(), &pair)
	if pair.Scope != auth.ScopeObserver || pair.RefreshToken == "" {
		t.Fatalf("pair: %+v", pair)
	}

	rec = a.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": pair.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d", rec.Code)
	}

	rec = a.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": pair.AccessToken})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh with access token: got %d", rec.Code)
	}
	if rec := a.do(t, http.MethodGet, "/auth/dev", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing client: got %d", rec.Code)
	}
	if rec := a.do(t, http.MethodGet, "/auth/dev?client=x&scope=admin", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown scope: got %d", rec.Code)
	}

	off := NewAuthHandler(a.jwtMgr, false)
	rec = httptest.NewRecorder()
	off.DevLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/dev?client=x", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("dev auth disabled: got %d", rec.Code)
	}
}
