// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all arena and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// ARENA CONFIGURATION
// =============================================================================

// ArenaConfig holds the logical playfield dimensions and shrink behavior.
// These are logical units, independent of any client viewport.
type ArenaConfig struct {
	Width  float64 // Arena width in logical units
	Height float64 // Arena height in logical units

	ShrinkInterval time.Duration // Time between boundary shrinks while Playing
	ShrinkStep     float64       // Area percentage removed per shrink
	ShrinkFloor    float64       // Minimum area percentage (shrink stops here)
}

// DefaultArena returns the default arena configuration.
func DefaultArena() ArenaConfig {
	return ArenaConfig{
		Width:          800,
		Height:         600,
		ShrinkInterval: 15 * time.Second,
		ShrinkStep:     10,
		ShrinkFloor:    30,
	}
}

// ArenaFromEnv returns arena configuration with environment variable overrides.
// Environment variables take precedence over defaults.
func ArenaFromEnv() ArenaConfig {
	cfg := DefaultArena()

	if w := getEnvFloat("ARENA_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvFloat("ARENA_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if s := getEnvInt("SHRINK_INTERVAL_SECONDS", 0); s > 0 {
		cfg.ShrinkInterval = time.Duration(s) * time.Second
	}
	if p := getEnvFloat("SHRINK_STEP_PERCENT", 0); p > 0 {
		cfg.ShrinkStep = p
	}
	if f := getEnvFloat("SHRINK_FLOOR_PERCENT", 0); f > 0 {
		cfg.ShrinkFloor = f
	}

	return cfg
}

// =============================================================================
// MATCH CONFIGURATION
// =============================================================================

// MatchConfig holds simulation and round-flow settings.
type MatchConfig struct {
	TickRate          int           // Simulation ticks per second
	MaxPlayers        int           // Hard cap on players in one match
	MinPlayersToStart int           // Players required to leave Waiting
	Countdown         time.Duration // Starting-phase countdown duration
	ObstacleBaseSpeed float64       // Horizontal obstacle speed in units/second
	HitboxInset       float64       // Per-side hitbox inset fraction (0.2 = 20%)
}

// DefaultMatch returns the default match configuration.
func DefaultMatch() MatchConfig {
	return MatchConfig{
		TickRate:          30,
		MaxPlayers:        30,
		MinPlayersToStart: 2,
		Countdown:         5 * time.Second,
		ObstacleBaseSpeed: 150,
		HitboxInset:       0.2,
	}
}

// MatchFromEnv returns match configuration with environment variable overrides.
// APP_ENV=development lowers the start threshold to 1 to ease local testing.
func MatchFromEnv() MatchConfig {
	cfg := DefaultMatch()

	if t := getEnvInt("TICK_RATE", 0); t > 0 {
		cfg.TickRate = t
	}
	if mp := getEnvInt("MAX_PLAYERS", 0); mp > 0 {
		cfg.MaxPlayers = mp
	}
	if mps := getEnvInt("MIN_PLAYERS_TO_START", 0); mps > 0 {
		cfg.MinPlayersToStart = mps
	} else if os.Getenv("APP_ENV") == "development" {
		cfg.MinPlayersToStart = 1
	}
	if c := getEnvInt("COUNTDOWN_SECONDS", 0); c > 0 {
		cfg.Countdown = time.Duration(c) * time.Second
	}
	if s := getEnvFloat("OBSTACLE_BASE_SPEED", 0); s > 0 {
		cfg.ObstacleBaseSpeed = s
	}
	if i := getEnvFloat("HITBOX_INSET", -1); i >= 0 && i < 0.5 {
		cfg.HitboxInset = i
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port: 3000,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Arena  ArenaConfig
	Match  MatchConfig
	Server ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Arena:  ArenaFromEnv(),
		Match:  MatchFromEnv(),
		Server: ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
