package game

import (
	"math/rand"
)

// Obstacle geometry and placement constants.
const (
	ObstacleWidth  = 60.0
	ObstacleHeight = 30.0

	// SafeZoneSize is the side of the square kept clear around a living
	// player when choosing a spawn slot for an obstacle.
	SafeZoneSize = 100.0

	// MaxPlacementAttempts bounds the safe-slot search so a reset can never
	// stall the tick loop. After the budget is spent the last candidate is
	// accepted even if it grazes a safe zone.
	MaxPlacementAttempts = 10

	// speedScoreDivisor converts the difficulty score into extra speed:
	// speed = base + score/10. Inherited from the single-player mode; the
	// arena match feeds elapsed seconds as the score (see Match.Advance).
	speedScoreDivisor = 10.0

	spawnYMin       = 20.0
	spawnYBottomPad = 70.0
)

var obstacleVariants = []string{"rock", "log", "barrel", "crate", "saw"}

// Point is a 2D position in arena units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Obstacle is a hazard sweeping left-to-right across the arena. Obstacles are
// pooled: once one crosses the right edge it is reset in place rather than
// removed, so the count only grows via explicit spawns.
type Obstacle struct {
	ID        int     `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Speed     float64 `json:"speed"`
	BaseSpeed float64 `json:"-"`
	Variant   string  `json:"variant"`

	// Active is reserved for pausing individual obstacles; always true while
	// the obstacle is in the match today.
	Active bool `json:"-"`
}

// NewObstacle creates an inactive-positioned obstacle; callers follow up with
// Reset to place it.
func NewObstacle(id int, baseSpeed float64) *Obstacle {
	return &Obstacle{
		ID:        id,
		Width:     ObstacleWidth,
		Height:    ObstacleHeight,
		Speed:     baseSpeed,
		BaseSpeed: baseSpeed,
		Active:    true,
	}
}

// Reset places the obstacle just off the left edge with a fresh vertical slot
// and cosmetic variant. Candidate slots that would drop the obstacle inside
// the 100x100 safe zone centered on any living player are retried up to
// MaxPlacementAttempts times; if the budget runs out the last candidate is
// kept. Returns whether a fully safe slot was found (informational).
func (o *Obstacle) Reset(arenaW, arenaH float64, livingPlayers []Point, rng *rand.Rand) bool {
	o.X = -o.Width
	o.Speed = o.BaseSpeed
	o.Variant = obstacleVariants[rng.Intn(len(obstacleVariants))]

	yMax := arenaH - spawnYBottomPad
	safe := false

	for attempt := 0; attempt < MaxPlacementAttempts; attempt++ {
		o.Y = spawnYMin + rng.Float64()*(yMax-spawnYMin)

		if !o.intersectsAnySafeZone(livingPlayers) {
			safe = true
			break
		}
	}

	return safe
}

func (o *Obstacle) intersectsAnySafeZone(livingPlayers []Point) bool {
	bounds := o.Bounds()
	for _, p := range livingPlayers {
		zone := Rect{
			X:      p.X - SafeZoneSize/2,
			Y:      p.Y - SafeZoneSize/2,
			Width:  SafeZoneSize,
			Height: SafeZoneSize,
		}
		if Overlaps(bounds, zone, 0) {
			return true
		}
	}
	return false
}

// Update advances the obstacle by speed*deltaTime and reports whether it has
// crossed the right edge and needs a reset. The obstacle does NOT reset
// itself: only the Match knows the current living-player positions, so the
// caller invokes Reset. Speed is recomputed from the difficulty score each
// tick so pooled obstacles pick up the current pace on reuse.
func (o *Obstacle) Update(deltaTime, arenaW float64, score int) bool {
	if !o.Active {
		return false
	}

	o.Speed = o.BaseSpeed + float64(score)/speedScoreDivisor
	if o.X < arenaW {
		o.X += o.Speed * deltaTime
	}

	return o.X >= arenaW
}

// CheckCollision reports whether the obstacle's hitbox overlaps the player's,
// both inset by the given fraction.
func (o *Obstacle) CheckCollision(p *Player, inset float64) bool {
	return Overlaps(o.Bounds(), p.Bounds(), inset)
}

// Bounds returns the obstacle's bounding box.
func (o *Obstacle) Bounds() Rect {
	return Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
}
