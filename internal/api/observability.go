package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dodge-royale/internal/game"
)

// Metrics with bounded cardinality (no per-player labels).
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
	})

	playerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_player_count",
		Help: "Players currently connected to the match",
	})

	aliveCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_alive_count",
		Help: "Players currently alive",
	})

	obstacleCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_obstacle_count",
		Help: "Active obstacles in the arena",
	})

	areaPercentage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "match_area_percentage",
		Help: "Current playable-area percentage",
	})

	matchPhase = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "match_phase",
		Help: "1 for the current phase, 0 otherwise",
	}, []string{"phase"}) // Bounded: waiting, starting, playing, gameover

	roundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_rounds_total",
		Help: "Rounds that reached GameOver",
	})

	eliminationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_eliminations_total",
		Help: "Players eliminated across all rounds",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: rate_limit, origin, ws_total_limit, ws_ip_limit, match_full

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active websocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total websocket messages broadcast",
	})
)

var knownPhases = []string{"waiting", "starting", "playing", "gameover"}

// matchStatsTracker remembers the previous snapshot so counters can be
// derived from gauge transitions.
var matchStatsTracker struct {
	sync.Mutex
	lastPhase string
	lastAlive int
}

// UpdateMatchStats refreshes the match gauges from a snapshot and derives
// the round/elimination counters from deltas. Called once per tick.
func UpdateMatchStats(snap game.MatchSnapshot) {
	playerCount.Set(float64(snap.TotalPlayers))
	aliveCount.Set(float64(snap.AliveCount))
	obstacleCount.Set(float64(len(snap.Obstacles)))
	areaPercentage.Set(snap.AreaPercentage)

	for _, phase := range knownPhases {
		if phase == snap.Phase {
			matchPhase.WithLabelValues(phase).Set(1)
		} else {
			matchPhase.WithLabelValues(phase).Set(0)
		}
	}

	matchStatsTracker.Lock()
	defer matchStatsTracker.Unlock()

	if snap.Phase == "gameover" && matchStatsTracker.lastPhase == "playing" {
		roundsTotal.Inc()
	}
	if snap.Phase == "playing" && matchStatsTracker.lastPhase == "playing" {
		if drop := matchStatsTracker.lastAlive - snap.AliveCount; drop > 0 {
			eliminationsTotal.Add(float64(drop))
		}
	}
	matchStatsTracker.lastPhase = snap.Phase
	matchStatsTracker.lastAlive = snap.AliveCount
}

// RecordTick records tick timing.
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// RecordConnectionRejected increments the rejection counter.
// reason must be one of the bounded values listed on the metric.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// UpdateWSConnections updates the websocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages counts one broadcast fan-out.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}

// ObservabilityConfig configures the debug server.
type ObservabilityConfig struct {
	Enabled    bool
	ListenAddr string // MUST stay on localhost in production
}

// DefaultObservabilityConfig returns safe defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060", // Localhost only
	}
}

// StartDebugServer starts the internal pprof + metrics server. It binds to
// localhost unless ALLOW_DEBUG_EXTERNAL=true is set explicitly.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("⚠️ Debug server forced to localhost for security")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return nil
}
