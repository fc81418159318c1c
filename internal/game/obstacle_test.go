package game

import "testing"

// TestObstacleReset verifies pooled reset places the obstacle just off the
// left edge within the vertical spawn band
func TestObstacleReset(t *testing.T) {
	rng := testRNG()
	ob := NewObstacle(0, 150)
	ob.X = 900
	ob.Speed = 300

	ob.Reset(800, 600, nil, rng)

	if ob.X != -ob.Width {
		t.Errorf("expected x=%.0f, got %.1f", -ob.Width, ob.X)
	}
	if ob.Y < 20 || ob.Y > 600-70 {
		t.Errorf("y=%.1f outside spawn band [20, 530]", ob.Y)
	}
	if ob.Speed != ob.BaseSpeed {
		t.Errorf("speed not reset to base: %.1f", ob.Speed)
	}
	if ob.Variant == "" {
		t.Error("expected a cosmetic variant")
	}
}

// TestObstacleResetAvoidsSafeZone verifies the safe-zone retry: when a
// living player's zone blocks part of the band, a safe slot avoids it unless
// the bounded retry budget runs out
func TestObstacleResetAvoidsSafeZone(t *testing.T) {
	rng := testRNG()
	ob := NewObstacle(0, 150)

	// Player centered where fresh obstacles appear (left edge).
	living := []Point{{X: 0, Y: 300}}

	for i := 0; i < 50; i++ {
		safe := ob.Reset(800, 600, living, rng)
		if !safe {
			continue // Budget exhausted is an accepted outcome.
		}
		if ob.intersectsAnySafeZone(living) {
			t.Fatalf("reset reported safe but y=%.1f intersects the safe zone", ob.Y)
		}
	}
}

// TestObstacleResetBudgetExhaustion verifies the reset terminates and keeps
// the last candidate when no safe slot exists
func TestObstacleResetBudgetExhaustion(t *testing.T) {
	rng := testRNG()
	ob := NewObstacle(0, 150)

	// Blanket the entire spawn band with safe zones so every slot fails.
	var living []Point
	for y := 0.0; y <= 600; y += 50 {
		living = append(living, Point{X: 0, Y: y})
	}

	safe := ob.Reset(800, 600, living, rng)
	if safe {
		t.Error("expected no safe slot with the band fully covered")
	}
	if ob.X != -ob.Width {
		t.Error("obstacle must still be placed after budget exhaustion")
	}
	if ob.Y < 20 || ob.Y > 530 {
		t.Errorf("degraded placement still bounded, got y=%.1f", ob.Y)
	}
}

// TestObstacleUpdate verifies dt-scaled advance and the speed formula
func TestObstacleUpdate(t *testing.T) {
	ob := NewObstacle(0, 150)
	ob.X = 100
	ob.Y = 300

	needsReset := ob.Update(0.1, 800, 0)
	if needsReset {
		t.Error("in-bounds obstacle should not need reset")
	}
	if ob.X != 115 {
		t.Errorf("expected x=115 after 0.1s at 150 u/s, got %.1f", ob.X)
	}

	// Difficulty score raises speed by score/10.
	ob.Update(0.1, 800, 100)
	if ob.Speed != 160 {
		t.Errorf("expected speed 160 with score 100, got %.1f", ob.Speed)
	}
}

// TestObstacleUpdateAtBoundary verifies an obstacle exactly at the arena
// width reports needs-reset without resetting itself
func TestObstacleUpdateAtBoundary(t *testing.T) {
	rng := testRNG()
	ob := NewObstacle(0, 150)
	ob.X = 800

	if !ob.Update(1.0/30, 800, 0) {
		t.Fatal("obstacle at x=arenaWidth must report needs-reset")
	}
	if ob.X != 800 {
		t.Errorf("obstacle must not advance past the boundary, got x=%.1f", ob.X)
	}

	// The caller performs the reset; afterwards the obstacle re-enters from
	// the left.
	ob.Reset(800, 600, nil, rng)
	if ob.X != -ob.Width {
		t.Errorf("expected x=%.0f after reset, got %.1f", -ob.Width, ob.X)
	}
}

// TestObstacleInactiveNoOp verifies the reserved active flag freezes updates
func TestObstacleInactiveNoOp(t *testing.T) {
	ob := NewObstacle(0, 150)
	ob.X = 100
	ob.Active = false

	if ob.Update(1.0, 800, 0) {
		t.Error("inactive obstacle should not request a reset")
	}
	if ob.X != 100 {
		t.Error("inactive obstacle should not move")
	}
}

// TestObstacleCheckCollision verifies the 20% hitbox inset via the entity
// helper
func TestObstacleCheckCollision(t *testing.T) {
	ob := NewObstacle(0, 150)
	ob.X, ob.Y = 100, 100

	p := NewPlayer("s", "p", 0)
	p.X, p.Y = 110, 105 // Deep overlap

	if !ob.CheckCollision(p, DefaultHitboxInset) {
		t.Error("expected collision on deep overlap")
	}

	p.X = 100 + ob.Width - 2 // 2-unit graze
	if ob.CheckCollision(p, DefaultHitboxInset) {
		t.Error("graze should be forgiven by the hitbox inset")
	}
}
