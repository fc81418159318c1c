package api

import (
	"net/http"
	"testing"
	"time"
)

// TestIPRateLimiterIsolatesIPs verifies one IP exhausting its bucket does not
// affect another
func TestIPRateLimiterIsolatesIPs(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             2,
		CleanupInterval:   time.Minute,
	})
	defer rl.Stop()

	for i := 0; i < 2; i++ {
		if !rl.Allow("1.1.1.1") {
			t.Fatalf("request %d within burst rejected", i)
		}
	}
	if rl.Allow("1.1.1.1") {
		t.Error("request past burst should be rejected")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("a different IP must have its own bucket")
	}

	stats := rl.Stats()
	if stats["allowed"] != 3 || stats["rejected"] != 1 {
		t.Errorf("unexpected counters: %v", stats)
	}
}

// TestGetClientIP verifies the proxy header precedence
func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{"direct", "10.0.0.1:5000", "", "", "10.0.0.1"},
		{"forwarded", "10.0.0.1:5000", "203.0.113.9", "", "203.0.113.9"},
		{"forwarded chain", "10.0.0.1:5000", "203.0.113.9, 10.0.0.2", "", "203.0.113.9"},
		{"real ip", "10.0.0.1:5000", "", "203.0.113.7", "203.0.113.7"},
		{"xff wins over real ip", "10.0.0.1:5000", "203.0.113.9", "203.0.113.7", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				r.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

// TestWebSocketRateLimiterSlots verifies the per-IP concurrent connection cap
// and slot release
func TestWebSocketRateLimiterSlots(t *testing.T) {
	wrl := NewWebSocketRateLimiter(2)

	if !wrl.Allow("1.1.1.1") || !wrl.Allow("1.1.1.1") {
		t.Fatal("slots within the cap rejected")
	}
	if wrl.Allow("1.1.1.1") {
		t.Error("third concurrent connection should be rejected")
	}

	wrl.Release("1.1.1.1")
	if !wrl.Allow("1.1.1.1") {
		t.Error("released slot should be reusable")
	}

	if !wrl.Allow("2.2.2.2") {
		t.Error("a different IP must have its own slots")
	}
}

// TestIsAllowedOrigin verifies the localhost allowance and the empty-origin
// rejection
func TestIsAllowedOrigin(t *testing.T) {
	if !IsAllowedOrigin("http://localhost:3000") {
		t.Error("localhost origin must be allowed")
	}
	if !IsAllowedOrigin("http://127.0.0.1:8080") {
		t.Error("loopback origin must be allowed")
	}
	if IsAllowedOrigin("") {
		t.Error("empty origin must be rejected")
	}
	if IsAllowedOrigin("http://evil.example.com") {
		t.Error("unknown origin must be rejected")
	}
}
