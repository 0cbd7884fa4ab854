package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sectorclash/internal/game"
	"sectorclash/internal/world"
)

// stubEngine satisfies ViewEngine without running a simulation.
type stubEngine struct {
	snap game.Snapshot
	sum  game.Summary
	over bool
}

func (s *stubEngine) View() game.Snapshot           { return s.snap }
func (s *stubEngine) Summary() (game.Summary, bool) { return s.sum, s.over }
func (s *stubEngine) MatchID() string               { return s.snap.MatchID }
func (s *stubEngine) Layout() *world.Layout         { return world.Builtin() }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(RouterConfig{
		Engine: &stubEngine{
			snap: game.Snapshot{MatchID: "m-1", Tick: 42, Progress: 0.5},
			sum:  game.Summary{MatchID: "m-1", Reason: "timeout"},
			over: true,
		},
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   DefaultRateLimitConfig.CleanupInterval,
		},
		DisableLogging: true,
	})
}

func TestHealthEndpoint(t *testing.T) {
	ts := httptest.NewServer(newTestRouter(t))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["matchId"] != "m-1" {
		t.Errorf("matchId = %q, want m-1", body["matchId"])
	}
}

func TestMatchEndpoint(t *testing.T) {
	ts := httptest.NewServer(newTestRouter(t))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/match")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var snap game.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	if snap.Tick != 42 || snap.Progress != 0.5 {
		t.Errorf("snapshot = tick %d progress %v, want 42/0.5", snap.Tick, snap.Progress)
	}
	if len(snap.Events) != 0 {
		t.Error("polling endpoint must not carry drained events")
	}
}

func TestSummaryEndpoint(t *testing.T) {
	ts := httptest.NewServer(newTestRouter(t))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/summary")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var sum game.Summary
	if err := json.NewDecoder(resp.Body).Decode(&sum); err != nil {
		t.Fatal(err)
	}
	if sum.Reason != "timeout" {
		t.Errorf("reason = %q, want timeout", sum.Reason)
	}
}

func TestSummaryEndpointBeforeTermination(t *testing.T) {
	router := NewRouter(RouterConfig{
		Engine: &stubEngine{
			snap: game.Snapshot{MatchID: "m-1", Tick: 42},
		},
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   DefaultRateLimitConfig.CleanupInterval,
		},
		DisableLogging: true,
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/summary")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 while the match is running", resp.StatusCode)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	ts := httptest.NewServer(newTestRouter(t))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/layout")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["width"].(float64) != 23 {
		t.Errorf("width = %v, want 23", body["width"])
	}
	if body["ascii"].(string) == "" {
		t.Error("ascii rendering missing")
	}
}

func TestRateLimitRejects(t *testing.T) {
	router := NewRouter(RouterConfig{
		Engine: &stubEngine{},
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             2,
			CleanupInterval:   DefaultRateLimitConfig.CleanupInterval,
		},
		DisableLogging: true,
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	got429 := false
	for i := 0; i < 10; i++ {
		resp, err := http.Get(ts.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			got429 = true
		}
	}
	if !got429 {
		t.Error("expected 429 after exhausting the burst")
	}
}

func TestClientIPExtraction(t *testing.T) {
	tests := []struct {
		name string
		xff  string
		xri  string
		addr string
		want string
	}{
		{"forwarded single", "10.0.0.1", "", "127.0.0.1:1234", "10.0.0.1"},
		{"forwarded chain", "10.0.0.1, 10.0.0.2", "", "127.0.0.1:1234", "10.0.0.1"},
		{"real ip", "", "10.0.0.3", "127.0.0.1:1234", "10.0.0.3"},
		{"remote addr", "", "", "192.168.1.5:9999", "192.168.1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.addr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}
