package config

import (
	"testing"
	"time"
)

// TestDefaults verifies the baked-in production values
func TestDefaults(t *testing.T) {
	arena := DefaultArena()
	if arena.Width != 800 || arena.Height != 600 {
		t.Errorf("unexpected arena dims: %.0fx%.0f", arena.Width, arena.Height)
	}
	if arena.ShrinkInterval != 15*time.Second || arena.ShrinkStep != 10 || arena.ShrinkFloor != 30 {
		t.Error("unexpected shrink defaults")
	}

	match := DefaultMatch()
	if match.TickRate != 30 || match.MaxPlayers != 30 || match.MinPlayersToStart != 2 {
		t.Error("unexpected match defaults")
	}
	if match.Countdown != 5*time.Second {
		t.Errorf("unexpected countdown: %s", match.Countdown)
	}
}

// TestEnvOverrides verifies environment variables win over defaults
func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARENA_WIDTH", "1000")
	t.Setenv("TICK_RATE", "60")
	t.Setenv("COUNTDOWN_SECONDS", "10")
	t.Setenv("SHRINK_FLOOR_PERCENT", "40")
	t.Setenv("PORT", "8080")

	cfg := Load()
	if cfg.Arena.Width != 1000 {
		t.Errorf("ARENA_WIDTH not applied: %.0f", cfg.Arena.Width)
	}
	if cfg.Match.TickRate != 60 {
		t.Errorf("TICK_RATE not applied: %d", cfg.Match.TickRate)
	}
	if cfg.Match.Countdown != 10*time.Second {
		t.Errorf("COUNTDOWN_SECONDS not applied: %s", cfg.Match.Countdown)
	}
	if cfg.Arena.ShrinkFloor != 40 {
		t.Errorf("SHRINK_FLOOR_PERCENT not applied: %.0f", cfg.Arena.ShrinkFloor)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("PORT not applied: %d", cfg.Server.Port)
	}
}

// TestInvalidEnvIgnored verifies garbage env values fall back to defaults
func TestInvalidEnvIgnored(t *testing.T) {
	t.Setenv("TICK_RATE", "not a number")
	t.Setenv("ARENA_WIDTH", "-5")

	cfg := Load()
	if cfg.Match.TickRate != 30 {
		t.Errorf("garbage TICK_RATE should be ignored, got %d", cfg.Match.TickRate)
	}
	if cfg.Arena.Width != 800 {
		t.Errorf("negative ARENA_WIDTH should be ignored, got %.0f", cfg.Arena.Width)
	}
}

// TestDevelopmentLowersStartThreshold verifies the APP_ENV shortcut
func TestDevelopmentLowersStartThreshold(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	if got := MatchFromEnv().MinPlayersToStart; got != 1 {
		t.Errorf("expected min players 1 in development, got %d", got)
	}

	// An explicit value still wins.
	t.Setenv("MIN_PLAYERS_TO_START", "3")
	if got := MatchFromEnv().MinPlayersToStart; got != 3 {
		t.Errorf("explicit override ignored, got %d", got)
	}
}
