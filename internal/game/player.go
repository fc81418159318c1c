package game

import (
	"math/rand"
)

// Status represents the player's lifecycle state.
type Status int

const (
	StatusAlive      Status = iota // In the arena, movable, eliminable
	StatusDead                     // Eliminated; position frozen until reset
	StatusSpectating               // Watching only (reserved for future flows)
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusAlive:
		return "alive"
	case StatusDead:
		return "dead"
	case StatusSpectating:
		return "spectating"
	default:
		return "unknown"
	}
}

// Player movement and geometry constants.
const (
	PlayerWidth  = 40.0
	PlayerHeight = 40.0

	// MoveStep is the distance moved per held direction per tick. It is
	// intentionally NOT scaled by deltaTime: the reference behavior is a
	// fixed step at the server's tick cadence, so changing the tick rate
	// changes player speed. Kept as-is for parity with the original game.
	MoveStep = 5.0

	// EdgeMargin keeps players off the exact arena border.
	EdgeMargin = 5.0

	// WinningLineY is a legacy top clamp inherited from a single-player
	// scoring mode. In arena-survival it is an inert floor for upward
	// movement and never awards anything.
	WinningLineY = 70.0

	spawnClampMargin = 10.0
	spawnJitter      = 10.0
)

// Input is the latest held-keys snapshot for one player. Out-of-order or
// duplicate input messages are harmless: only the most recent value per
// direction matters (last write wins).
type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Player is a server-authoritative player entity. All mutation goes through
// the owning Match; nothing outside the game package touches these fields
// while the match is running.
type Player struct {
	ID    string `json:"id"`    // Session id, unique per connection lifetime
	Index int    `json:"index"` // Ordinal assigned at creation, never reused
	Name  string `json:"name"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Input  Input  `json:"-"`
	Status Status `json:"-"`
	Score  int    `json:"score"`
	Color  string `json:"color"`
}

var playerColors = []string{
	"#ff6b6b", "#4ecdc4", "#45b7d1", "#96ceb4",
	"#ffeaa7", "#dfe6e9", "#fd79a8", "#00b894",
	"#6c5ce7", "#fdcb6e", "#e17055", "#00cec9",
}

// NewPlayer creates a player with the given session id and ordinal index.
// The color is deterministic in the index so respawns keep their color.
func NewPlayer(sessionID, name string, index int) *Player {
	return &Player{
		ID:     sessionID,
		Index:  index,
		Name:   name,
		Width:  PlayerWidth,
		Height: PlayerHeight,
		Color:  playerColors[index%len(playerColors)],
		Status: StatusAlive,
	}
}

// ResetPosition distributes the player along the bottom edge: the arena width
// is divided into totalPlayers+1 equal sections and player `index` is placed
// at section index+1, offset by half the player width, clamped to stay inside
// the arena, plus a small horizontal jitter so same-indexed respawns don't
// stack exactly. Sets the status back to Alive.
func (p *Player) ResetPosition(arenaW, arenaH float64, index, totalPlayers int, rng *rand.Rand) {
	if totalPlayers < 1 {
		totalPlayers = 1
	}

	section := arenaW / float64(totalPlayers+1)
	x := section*float64(index+1) - p.Width/2

	min := spawnClampMargin
	max := arenaW - p.Width - spawnClampMargin
	if x < min {
		x = min
	}
	if x > max {
		x = max
	}

	p.X = x + (rng.Float64()*2-1)*spawnJitter
	p.Y = arenaH - p.Height - 20 + (rng.Float64()*2-1)*5
	p.Status = StatusAlive
}

// UpdateMovement applies the held direction flags as fixed steps, bounded so
// the player cannot cross the arena edges. Dead and spectating players are
// frozen. The deltaTime argument exists for interface symmetry with the
// obstacle update; see MoveStep for why it is unused.
func (p *Player) UpdateMovement(deltaTime, arenaW, arenaH float64) {
	if p.Status != StatusAlive {
		return
	}
	_ = deltaTime

	if p.Input.Up && p.Y > WinningLineY {
		p.Y -= MoveStep
	}
	if p.Input.Down && p.Y < arenaH-p.Height-EdgeMargin {
		p.Y += MoveStep
	}
	if p.Input.Left && p.X > EdgeMargin {
		p.X -= MoveStep
	}
	if p.Input.Right && p.X < arenaW-p.Width-EdgeMargin {
		p.X += MoveStep
	}
}

// MarkDead sets the status to Dead. Idempotent.
func (p *Player) MarkDead() {
	p.Status = StatusDead
}

// BecomeSpectator sets the status to Spectating. Not invoked by the current
// match flow but supported for future modes.
func (p *Player) BecomeSpectator() {
	p.Status = StatusSpectating
}

// Bounds returns the player's bounding box.
func (p *Player) Bounds() Rect {
	return Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}
