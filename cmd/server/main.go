package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dodge-royale/internal/api"
	"dodge-royale/internal/config"
	"dodge-royale/internal/game"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  DODGE ROYALE - ARENA SERVER")
	log.Println("🎮 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	arenaCfg := appConfig.Arena
	matchCfg := appConfig.Match
	serverCfg := appConfig.Server

	log.Printf("🗺️ Arena: %.0fx%.0f, shrink %.0f%% every %s down to %.0f%%",
		arenaCfg.Width, arenaCfg.Height, arenaCfg.ShrinkStep, arenaCfg.ShrinkInterval, arenaCfg.ShrinkFloor)
	log.Printf("🎮 Match: %d TPS, %d-%d players, %s countdown",
		matchCfg.TickRate, matchCfg.MinPlayersToStart, matchCfg.MaxPlayers, matchCfg.Countdown)

	// One match per process today; the Match carries no global state, so
	// running several rooms is a matter of constructing more of these.
	match := game.NewMatch(game.MatchConfig{
		ArenaWidth:        arenaCfg.Width,
		ArenaHeight:       arenaCfg.Height,
		TickRate:          matchCfg.TickRate,
		MaxPlayers:        matchCfg.MaxPlayers,
		MinPlayersToStart: matchCfg.MinPlayersToStart,
		Countdown:         matchCfg.Countdown,
		ShrinkInterval:    arenaCfg.ShrinkInterval,
		ShrinkStep:        arenaCfg.ShrinkStep,
		ShrinkFloor:       arenaCfg.ShrinkFloor,
		ObstacleBaseSpeed: matchCfg.ObstacleBaseSpeed,
		HitboxInset:       matchCfg.HitboxInset,
	})

	// Match event journal (JSONL)
	eventLog := game.NewEventLog()
	eventLogPath := getEnvWithDefault("EVENT_LOG_PATH", "events.jsonl")
	if err := eventLog.Start(eventLogPath); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else {
		log.Printf("📝 Event log: %s", eventLogPath)
		match.AttachEventLog(eventLog)
	}

	// Debug server (pprof + prometheus), localhost only
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(api.DefaultObservabilityConfig()); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	server := api.NewServer(match)

	// Discrete match events (eliminations, phase changes, winner) go out to
	// clients alongside the per-tick state snapshot.
	match.SetEventNotifier(server.Hub().BroadcastMatchEvent)

	// The loop drives the simulation; each tick's snapshot goes out to every
	// websocket client and into the metrics.
	loop := game.NewLoop(match, matchCfg.TickRate)
	loop.OnTick = func(snap game.MatchSnapshot, elapsed time.Duration) {
		api.RecordTick(elapsed)
		api.UpdateMatchStats(snap)
		server.Hub().BroadcastSnapshot(snap)
	}
	loop.Start()

	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		log.Printf("🌐 Server: http://localhost%s (ws: /ws)", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	loop.Stop() // waits for the in-flight tick before teardown
	eventLog.Stop()
	server.Stop()
	log.Println("👋 Goodbye!")
}

func getEnvWithDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
