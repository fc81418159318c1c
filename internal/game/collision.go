package game

// DefaultHitboxInset is the fraction trimmed from each side of a rectangle
// before overlap testing. The effective hitbox is smaller than the visual
// footprint so near-misses don't eliminate a player.
const DefaultHitboxInset = 0.2

// Rect is an axis-aligned rectangle in arena units.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Inset returns the rectangle shrunk by the given fraction on each side.
// Inset(0.2) on a 100-wide rect yields a 60-wide rect with the same center.
func (r Rect) Inset(fraction float64) Rect {
	dx := r.Width * fraction
	dy := r.Height * fraction
	return Rect{
		X:      r.X + dx,
		Y:      r.Y + dy,
		Width:  r.Width - 2*dx,
		Height: r.Height - 2*dy,
	}
}

// Contains reports whether other lies entirely inside r.
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X &&
		other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// Overlaps reports whether the hitboxes of a and b intersect after each is
// inset by the given fraction per side. The test is symmetric:
// Overlaps(a, b, f) == Overlaps(b, a, f). All checks are O(1), no state.
func Overlaps(a, b Rect, inset float64) bool {
	ha := a.Inset(inset)
	hb := b.Inset(inset)

	return ha.X < hb.X+hb.Width &&
		ha.X+ha.Width > hb.X &&
		ha.Y < hb.Y+hb.Height &&
		ha.Y+ha.Height > hb.Y
}
