package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dodge-royale/internal/game"
)

// mockMatch implements MatchInterface with canned state so router tests run
// without a simulation loop.
type mockMatch struct {
	snap game.MatchSnapshot
	cfg  game.MatchConfig
}

func (m *mockMatch) Snapshot() game.MatchSnapshot { return m.snap }
func (m *mockMatch) Config() game.MatchConfig     { return m.cfg }

func newMockMatch() *mockMatch {
	return &mockMatch{
		snap: game.MatchSnapshot{
			Phase:          "playing",
			ArenaWidth:     800,
			ArenaHeight:    600,
			AreaPercentage: 90,
			TotalPlayers:   3,
			AliveCount:     2,
			Tick:           120,
			Players: []game.PlayerSnapshot{
				{ID: "a", Index: 0, Name: "Ana", Status: "alive"},
				{ID: "b", Index: 1, Name: "Bo", Status: "dead"},
			},
		},
		cfg: game.DefaultMatchConfig(),
	}
}

func testRouter(mock *mockMatch, extra func() map[string]interface{}) http.Handler {
	return NewRouter(RouterConfig{
		Match: mock,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   time.Minute,
		},
		ExtraStats:     extra,
		DisableLogging: true,
	})
}

// TestStateEndpoint verifies /api/state serves the full snapshot
func TestStateEndpoint(t *testing.T) {
	ts := httptest.NewServer(testRouter(newMockMatch(), nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET /api/state: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}

	var snap game.MatchSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Phase != "playing" || snap.AliveCount != 2 {
		t.Errorf("unexpected snapshot: phase=%s alive=%d", snap.Phase, snap.AliveCount)
	}
	if len(snap.Players) != 2 {
		t.Errorf("expected 2 players, got %d", len(snap.Players))
	}
}

// TestStatsEndpointMergesExtra verifies /api/stats merges the injected
// counters
func TestStatsEndpointMergesExtra(t *testing.T) {
	extra := func() map[string]interface{} {
		return map[string]interface{}{"connections": 7}
	}
	ts := httptest.NewServer(testRouter(newMockMatch(), extra))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("GET /api/stats: %v", err)
	}
	defer resp.Body.Close()

	var stats map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats["phase"] != "playing" {
		t.Errorf("expected playing phase, got %v", stats["phase"])
	}
	if stats["connections"] != float64(7) {
		t.Errorf("extra stats not merged: %v", stats["connections"])
	}
	if _, present := stats["winner"]; present {
		t.Error("winner must be omitted while the round is live")
	}
}

// TestConfigEndpoint verifies the client-facing arena constants
func TestConfigEndpoint(t *testing.T) {
	ts := httptest.NewServer(testRouter(newMockMatch(), nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/config")
	if err != nil {
		t.Fatalf("GET /api/config: %v", err)
	}
	defer resp.Body.Close()

	var cfg map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg["arenaWidth"] != float64(800) || cfg["arenaHeight"] != float64(600) {
		t.Errorf("unexpected arena dims: %v x %v", cfg["arenaWidth"], cfg["arenaHeight"])
	}
	if cfg["countdownSeconds"] != float64(5) {
		t.Errorf("expected 5s countdown, got %v", cfg["countdownSeconds"])
	}
	if cfg["maxPlayers"] != float64(30) {
		t.Errorf("expected 30 max players, got %v", cfg["maxPlayers"])
	}
}

// TestHealthEndpoint verifies the liveness probe
func TestHealthEndpoint(t *testing.T) {
	ts := httptest.NewServer(testRouter(newMockMatch(), nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

// TestRateLimitRejects verifies requests past the burst get 429 with a
// Retry-After hint
func TestRateLimitRejects(t *testing.T) {
	router := NewRouter(RouterConfig{
		Match: newMockMatch(),
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             2,
			CleanupInterval:   time.Minute,
		},
		DisableLogging: true,
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	var last *http.Response
	var lastBody map[string]string
	for i := 0; i < 5; i++ {
		resp, err := http.Get(ts.URL + "/health")
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		lastBody = map[string]string{}
		json.NewDecoder(resp.Body).Decode(&lastBody)
		resp.Body.Close()
		last = resp
	}

	if last.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last.StatusCode)
	}
	if last.Header.Get("Retry-After") == "" {
		t.Error("expected a Retry-After header")
	}
	if lastBody["error"] == "" {
		t.Error("expected a JSON error envelope in the 429 body")
	}
}
