package api

import (
	"encoding/json"
	"net/http"
)

// Handler methods for routerHandlers. Used by both the standalone router
// (for tests) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.match.Snapshot())
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.match.Snapshot()

	stats := map[string]interface{}{
		"phase":          snap.Phase,
		"totalPlayers":   snap.TotalPlayers,
		"aliveCount":     snap.AliveCount,
		"areaPercentage": snap.AreaPercentage,
		"tick":           snap.Tick,
	}
	if snap.WinnerName != "" {
		stats["winner"] = snap.WinnerName
	}
	if h.extraStats != nil {
		for k, v := range h.extraStats() {
			stats[k] = v
		}
	}

	writeJSON(w, stats)
}

// handleGetConfig exposes the arena constants a client needs to size its
// canvas and predict countdowns. Logical units, not pixels.
func (h *routerHandlers) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.match.Config()

	writeJSON(w, map[string]interface{}{
		"arenaWidth":        cfg.ArenaWidth,
		"arenaHeight":       cfg.ArenaHeight,
		"tickRate":          cfg.TickRate,
		"maxPlayers":        cfg.MaxPlayers,
		"minPlayersToStart": cfg.MinPlayersToStart,
		"countdownSeconds":  cfg.Countdown.Seconds(),
	})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
