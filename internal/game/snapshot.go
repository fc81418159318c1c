package game

import "sort"

// PlayerSnapshot is an immutable copy of one player for broadcast. Value
// types only; nothing points back into live match state.
type PlayerSnapshot struct {
	ID     string  `json:"id"`
	Index  int     `json:"index"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Status string  `json:"status"`
	Score  int     `json:"score"`
	Color  string  `json:"color"`
}

// ObstacleSnapshot is an immutable copy of one obstacle for broadcast.
type ObstacleSnapshot struct {
	ID      int     `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Speed   float64 `json:"speed"`
	Variant string  `json:"variant"`
}

// MatchSnapshot is the read-only view the session layer serializes and diffs
// to clients every tick.
type MatchSnapshot struct {
	Phase          string  `json:"phase"`
	ArenaWidth     float64 `json:"arenaWidth"`
	ArenaHeight    float64 `json:"arenaHeight"`
	AreaPercentage float64 `json:"areaPercentage"`
	Playable       Rect    `json:"playable"`
	Countdown      float64 `json:"countdown"` // Seconds until Playing, 0 outside Starting
	TotalPlayers   int     `json:"totalPlayers"`
	AliveCount     int     `json:"aliveCount"`
	WinnerName     string  `json:"winnerName,omitempty"`
	Tick           uint64  `json:"tick"`

	Players   []PlayerSnapshot   `json:"players"`
	Obstacles []ObstacleSnapshot `json:"obstacles"`
}

// Snapshot copies the current match state. A match caps at 30 players and a
// dozen obstacles, so a fresh copy per call is cheap; callers own the result.
func (m *Match) Snapshot() MatchSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MatchSnapshot{
		Phase:          m.phase.String(),
		ArenaWidth:     m.cfg.ArenaWidth,
		ArenaHeight:    m.cfg.ArenaHeight,
		AreaPercentage: m.areaPercentage,
		Playable:       m.playableRectLocked(),
		TotalPlayers:   m.totalPlayers,
		AliveCount:     m.aliveCount,
		WinnerName:     m.winnerName,
		Tick:           m.tickCount,
		Players:        make([]PlayerSnapshot, 0, len(m.players)),
		Obstacles:      make([]ObstacleSnapshot, 0, len(m.obstacles)),
	}

	if m.phase == PhaseStarting {
		if remaining := m.startDeadline.Sub(m.now()).Seconds(); remaining > 0 {
			snap.Countdown = remaining
		}
	}

	for _, p := range m.players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:     p.ID,
			Index:  p.Index,
			Name:   p.Name,
			X:      p.X,
			Y:      p.Y,
			Width:  p.Width,
			Height: p.Height,
			Status: p.Status.String(),
			Score:  p.Score,
			Color:  p.Color,
		})
	}
	// Stable order for clients diffing consecutive snapshots.
	sort.Slice(snap.Players, func(i, j int) bool {
		return snap.Players[i].Index < snap.Players[j].Index
	})

	for _, ob := range m.obstacles {
		snap.Obstacles = append(snap.Obstacles, ObstacleSnapshot{
			ID:      ob.ID,
			X:       ob.X,
			Y:       ob.Y,
			Width:   ob.Width,
			Height:  ob.Height,
			Speed:   ob.Speed,
			Variant: ob.Variant,
		})
	}

	return snap
}

// Phase returns the current match phase.
func (m *Match) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Counts returns the total and alive player counts.
func (m *Match) Counts() (total, alive int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalPlayers, m.aliveCount
}

// Winner returns the recorded winner name, empty while the round is live.
func (m *Match) Winner() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.winnerName
}
