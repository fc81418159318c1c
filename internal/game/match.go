package game

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

// Phase is the match lifecycle state. Transitions are monotonic within a
// round: Waiting -> Starting -> Playing -> GameOver -> (reset) -> Waiting.
type Phase int

const (
	PhaseWaiting  Phase = iota // Sandbox: free movement, no eliminations
	PhaseStarting              // Countdown running, still free movement
	PhasePlaying               // Live round: shrink, obstacles, eliminations
	PhaseGameOver              // Frozen until a restart request
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseStarting:
		return "starting"
	case PhasePlaying:
		return "playing"
	case PhaseGameOver:
		return "gameover"
	default:
		return "unknown"
	}
}

// MaxNameLength caps client-supplied display names.
const MaxNameLength = 20

// NoWinner is recorded when a round ends with zero players alive.
const NoWinner = "no one"

// MatchConfig configures one match. Zero values fall back to the defaults,
// so tests can set only the knobs they care about.
type MatchConfig struct {
	ArenaWidth  float64
	ArenaHeight float64

	TickRate          int
	MaxPlayers        int
	MinPlayersToStart int
	Countdown         time.Duration

	ShrinkInterval time.Duration
	ShrinkStep     float64 // Area percentage removed per shrink
	ShrinkFloor    float64 // Shrink stops at this percentage

	ObstacleBaseSpeed float64
	HitboxInset       float64

	// Seed fixes the match RNG for deterministic tests; 0 means time-based.
	Seed int64

	// Clock supplies wall-clock reads for countdown and shrink scheduling.
	// Defaults to time.Now. Tests inject a synthetic clock so no test ever
	// sleeps. The source must be non-decreasing.
	Clock func() time.Time
}

// DefaultMatchConfig returns the production defaults.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		ArenaWidth:        800,
		ArenaHeight:       600,
		TickRate:          30,
		MaxPlayers:        30,
		MinPlayersToStart: 2,
		Countdown:         5 * time.Second,
		ShrinkInterval:    15 * time.Second,
		ShrinkStep:        10,
		ShrinkFloor:       30,
		ObstacleBaseSpeed: 150,
		HitboxInset:       DefaultHitboxInset,
	}
}

func (cfg MatchConfig) withDefaults() MatchConfig {
	def := DefaultMatchConfig()
	if cfg.ArenaWidth <= 0 {
		cfg.ArenaWidth = def.ArenaWidth
	}
	if cfg.ArenaHeight <= 0 {
		cfg.ArenaHeight = def.ArenaHeight
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = def.TickRate
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = def.MaxPlayers
	}
	if cfg.MinPlayersToStart <= 0 {
		cfg.MinPlayersToStart = def.MinPlayersToStart
	}
	if cfg.Countdown <= 0 {
		cfg.Countdown = def.Countdown
	}
	if cfg.ShrinkInterval <= 0 {
		cfg.ShrinkInterval = def.ShrinkInterval
	}
	if cfg.ShrinkStep <= 0 {
		cfg.ShrinkStep = def.ShrinkStep
	}
	if cfg.ShrinkFloor <= 0 {
		cfg.ShrinkFloor = def.ShrinkFloor
	}
	if cfg.ObstacleBaseSpeed <= 0 {
		cfg.ObstacleBaseSpeed = def.ObstacleBaseSpeed
	}
	if cfg.HitboxInset <= 0 {
		cfg.HitboxInset = def.HitboxInset
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return cfg
}

// Match owns the canonical player set, obstacle pool and arena state for one
// room. All reads and writes go through its methods under one mutex, so
// join/leave/input arriving from connection goroutines serialize against the
// tick. There is no process-wide state: construct one Match per room.
type Match struct {
	mu  sync.Mutex
	cfg MatchConfig

	players   map[string]*Player
	obstacles []*Obstacle

	phase        Phase
	totalPlayers int
	aliveCount   int
	roundSize    int // Players present when the current round began
	nextIndex    int // Monotonic ordinal, never reused after a leave
	winnerName   string

	elapsed        float64 // Seconds spent in the current Playing phase
	areaPercentage float64
	startDeadline  time.Time
	nextShrinkAt   time.Time

	tickCount uint64

	now     func() time.Time
	rng     *rand.Rand
	events  *EventLog
	onEvent func(Event)
}

// NewMatch creates a match in the Waiting phase.
func NewMatch(cfg MatchConfig) *Match {
	cfg = cfg.withDefaults()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Match{
		cfg:            cfg,
		players:        make(map[string]*Player),
		phase:          PhaseWaiting,
		areaPercentage: 100,
		now:            cfg.Clock,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

// AttachEventLog wires an event journal. Optional; a nil log drops events.
func (m *Match) AttachEventLog(el *EventLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = el
}

// SetEventNotifier registers a callback invoked for every match event, so the
// session layer can push discrete events (eliminations, phase changes, the
// winner) to clients without diffing snapshots. The callback runs under the
// match lock and must not block.
func (m *Match) SetEventNotifier(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvent = fn
}

// Config returns the match configuration.
func (m *Match) Config() MatchConfig {
	return m.cfg
}

// AddPlayer registers a session in the match, spawning it along the bottom
// edge. Returns the existing player if the session already joined, or nil if
// the match is full. An empty display name gets a default.
func (m *Match) AddPlayer(sessionID, displayName string) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.players[sessionID]; ok {
		return existing
	}
	if m.totalPlayers >= m.cfg.MaxPlayers {
		log.Printf("⚠️ Match full (%d players), rejecting session %s", m.totalPlayers, sessionID)
		return nil
	}

	index := m.nextIndex
	m.nextIndex++

	name := truncateName(displayName)
	if name == "" {
		name = fmt.Sprintf("Player %d", index+1)
	}

	p := NewPlayer(sessionID, name, index)
	p.ResetPosition(m.cfg.ArenaWidth, m.cfg.ArenaHeight, index, m.totalPlayers+1, m.rng)

	m.players[sessionID] = p
	m.totalPlayers++
	m.aliveCount++

	m.emit(EventTypePlayerJoin, sessionID, PlayerJoinPayload{
		SessionID: sessionID,
		Name:      p.Name,
		Index:     p.Index,
		SpawnX:    p.X,
		SpawnY:    p.Y,
	})
	log.Printf("👤 %s joined (%d total)", p.Name, m.totalPlayers)

	m.maybeBeginCountdownLocked()
	return p
}

// RemovePlayer drops a session from the match. Unknown sessions are a no-op.
// A leave can itself produce a winner, so the win condition is re-evaluated
// immediately.
func (m *Match) RemovePlayer(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[sessionID]
	if !ok {
		return
	}

	if p.Status == StatusAlive {
		m.aliveCount--
	}
	m.totalPlayers--
	delete(m.players, sessionID)

	m.emit(EventTypePlayerLeave, sessionID, PlayerLeavePayload{
		SessionID: sessionID,
		Name:      p.Name,
	})
	log.Printf("👋 %s left (%d remaining)", p.Name, m.totalPlayers)

	if m.phase == PhasePlaying {
		m.checkWinLocked()
	}
}

// ApplyInput replaces the held-keys snapshot for a session. Input for an
// unknown session (a normal race with disconnect) is dropped silently.
func (m *Match) ApplyInput(sessionID string, input Input) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.players[sessionID]; ok {
		p.Input = input
	}
}

// SetName updates a player's display name, truncated to MaxNameLength.
// No-op if the session is unknown or the name is empty.
func (m *Match) SetName(sessionID, name string) {
	name = truncateName(name)
	if name == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.players[sessionID]; ok {
		p.Name = name
	}
}

// RequestRestart resets the match for a new round. Accepted only from a
// known session and only while the phase is GameOver; ignored otherwise, so
// a second restart racing the first is harmless.
func (m *Match) RequestRestart(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseGameOver {
		return
	}
	if _, ok := m.players[sessionID]; !ok {
		return
	}

	m.resetLocked()
}

// Advance runs one simulation tick with the given elapsed wall-clock delta in
// seconds. Called by the fixed-rate loop; never blocks on input.
func (m *Match) Advance(deltaTime float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tickCount++

	switch m.phase {
	case PhaseWaiting:
		m.moveAllLocked(deltaTime)
		m.maybeBeginCountdownLocked()

	case PhaseStarting:
		m.moveAllLocked(deltaTime)
		if !m.now().Before(m.startDeadline) {
			m.beginPlayingLocked()
		}

	case PhasePlaying:
		m.playingTickLocked(deltaTime)

	case PhaseGameOver:
		// Frozen until a restart request.
	}
}

// maybeBeginCountdownLocked moves Waiting -> Starting once enough players are
// present.
func (m *Match) maybeBeginCountdownLocked() {
	if m.phase != PhaseWaiting || m.totalPlayers < m.cfg.MinPlayersToStart {
		return
	}

	m.phase = PhaseStarting
	m.startDeadline = m.now().Add(m.cfg.Countdown)

	m.emit(EventTypePhaseChange, "", PhaseChangePayload{Phase: m.phase.String()})
	log.Printf("⏱️ Countdown started: %.0fs", m.cfg.Countdown.Seconds())
}

// beginPlayingLocked moves Starting -> Playing: resets the round clock,
// schedules the first shrink and spawns the initial obstacle batch.
func (m *Match) beginPlayingLocked() {
	m.phase = PhasePlaying
	m.elapsed = 0
	m.roundSize = m.totalPlayers
	m.nextShrinkAt = m.now().Add(m.cfg.ShrinkInterval)

	count := 5 + m.totalPlayers/5
	living := m.livingPositionsLocked()
	m.obstacles = make([]*Obstacle, 0, count)
	for i := 0; i < count; i++ {
		ob := NewObstacle(i, m.cfg.ObstacleBaseSpeed)
		ob.Reset(m.cfg.ArenaWidth, m.cfg.ArenaHeight, living, m.rng)
		m.obstacles = append(m.obstacles, ob)
	}

	m.emit(EventTypePhaseChange, "", PhaseChangePayload{Phase: m.phase.String()})
	log.Printf("🎮 Round started: %d players, %d obstacles", m.totalPlayers, count)
}

// playingTickLocked runs one live tick. Order matters: player movement before
// obstacle movement, obstacle movement before collision checks, collision
// checks before the win evaluation — later steps read positions written by
// earlier ones. Eliminations are two-phase: hazards collect victims during
// the scans, then state changes apply once per player after the scans, so a
// player hit by the boundary and an obstacle in the same tick dies exactly
// once.
func (m *Match) playingTickLocked(deltaTime float64) {
	m.elapsed += deltaTime

	// Arena shrink on its wall-clock schedule, clamped at the floor.
	if !m.now().Before(m.nextShrinkAt) && m.areaPercentage > m.cfg.ShrinkFloor {
		m.areaPercentage -= m.cfg.ShrinkStep
		if m.areaPercentage < m.cfg.ShrinkFloor {
			m.areaPercentage = m.cfg.ShrinkFloor
		}
		m.nextShrinkAt = m.now().Add(m.cfg.ShrinkInterval)

		m.emit(EventTypeArenaShrink, "", ArenaShrinkPayload{AreaPercentage: m.areaPercentage})
		log.Printf("🔥 Arena shrunk to %.0f%%", m.areaPercentage)
	}

	type elimination struct {
		sessionID string
		cause     string
	}
	var doomed []elimination
	marked := make(map[string]bool)

	// Player movement, then boundary test against the shrunken rectangle.
	playable := m.playableRectLocked()
	for id, p := range m.players {
		p.UpdateMovement(deltaTime, m.cfg.ArenaWidth, m.cfg.ArenaHeight)
		if p.Status == StatusAlive && !playable.Contains(p.Bounds()) {
			doomed = append(doomed, elimination{id, EliminationByBoundary})
			marked[id] = true
		}
	}

	// Obstacle advance, pooled reset, then collision sweep. The difficulty
	// score driving obstacle speed is the round's elapsed seconds; the arena
	// mode has no per-player score race.
	score := int(m.elapsed)
	for _, ob := range m.obstacles {
		if ob.Update(deltaTime, m.cfg.ArenaWidth, score) {
			ob.Reset(m.cfg.ArenaWidth, m.cfg.ArenaHeight, m.livingPositionsLocked(), m.rng)
		}
		for id, p := range m.players {
			if p.Status != StatusAlive || marked[id] {
				continue
			}
			if ob.CheckCollision(p, m.cfg.HitboxInset) {
				doomed = append(doomed, elimination{id, EliminationByObstacle})
				marked[id] = true
			}
		}
	}

	// Apply eliminations after the scans complete.
	for _, e := range doomed {
		p := m.players[e.sessionID]
		p.MarkDead()
		m.aliveCount--

		m.emit(EventTypeElimination, e.sessionID, EliminationPayload{
			SessionID: e.sessionID,
			Name:      p.Name,
			Cause:     e.cause,
			X:         p.X,
			Y:         p.Y,
		})
		log.Printf("💀 %s eliminated (%s), %d alive", p.Name, e.cause, m.aliveCount)
	}

	m.checkWinLocked()
}

// checkWinLocked evaluates the win condition from the live alive counter.
// One alive player in a round that began with several crowns a winner; zero
// alive means everyone went down in the same tick and nobody wins. The
// comparison uses the round's starting size, not the live total: a mid-round
// leave shrinks totalPlayers before this runs, and the survivor of a
// two-player round must still be crowned.
func (m *Match) checkWinLocked() {
	if m.phase != PhasePlaying {
		return
	}

	switch {
	case m.aliveCount == 1 && m.roundSize > 1:
		for _, p := range m.players {
			if p.Status == StatusAlive {
				m.winnerName = p.Name
				break
			}
		}
	case m.aliveCount == 0:
		m.winnerName = NoWinner
	default:
		return
	}

	m.phase = PhaseGameOver
	m.emit(EventTypeWinner, "", WinnerPayload{Winner: m.winnerName})
	log.Printf("🏆 Game over, winner: %s", m.winnerName)
}

// resetLocked returns the match to Waiting for a fresh round: winner cleared,
// arena back to 100%, obstacle pool dropped, every connected player alive at
// a fresh bottom-edge slot with score zeroed. The next transition to Playing
// respawns the obstacle batch.
func (m *Match) resetLocked() {
	m.phase = PhaseWaiting
	m.elapsed = 0
	m.winnerName = ""
	m.areaPercentage = 100
	m.obstacles = nil
	m.aliveCount = m.totalPlayers

	slot := 0
	for _, p := range m.players {
		p.Score = 0
		p.Input = Input{}
		p.ResetPosition(m.cfg.ArenaWidth, m.cfg.ArenaHeight, slot, m.totalPlayers, m.rng)
		slot++
	}

	m.emit(EventTypeRoundReset, "", PhaseChangePayload{Phase: m.phase.String()})
	log.Printf("🔄 Round reset: %d players back to waiting", m.totalPlayers)

	m.maybeBeginCountdownLocked()
}

// moveAllLocked applies free movement outside the Playing phase.
func (m *Match) moveAllLocked(deltaTime float64) {
	for _, p := range m.players {
		p.UpdateMovement(deltaTime, m.cfg.ArenaWidth, m.cfg.ArenaHeight)
	}
}

// playableRectLocked returns the current shrunken arena rectangle, centered
// on the arena center and scaled by areaPercentage/100 in both axes.
func (m *Match) playableRectLocked() Rect {
	scale := m.areaPercentage / 100
	w := m.cfg.ArenaWidth * scale
	h := m.cfg.ArenaHeight * scale
	return Rect{
		X:      (m.cfg.ArenaWidth - w) / 2,
		Y:      (m.cfg.ArenaHeight - h) / 2,
		Width:  w,
		Height: h,
	}
}

// livingPositionsLocked returns the center positions of all alive players,
// used as obstacle spawn safe zones.
func (m *Match) livingPositionsLocked() []Point {
	out := make([]Point, 0, m.aliveCount)
	for _, p := range m.players {
		if p.Status == StatusAlive {
			out = append(out, Point{X: p.X + p.Width/2, Y: p.Y + p.Height/2})
		}
	}
	return out
}

func (m *Match) emit(t EventType, sessionID string, payload interface{}) {
	if m.events == nil && m.onEvent == nil {
		return
	}

	ev := NewEvent(t, m.tickCount, sessionID, payload)
	if m.events != nil {
		m.events.Emit(ev)
	}
	if m.onEvent != nil {
		m.onEvent(ev)
	}
}

// truncateName caps a display name at MaxNameLength runes. Counting runes
// rather than bytes keeps a multibyte name from being cut mid-sequence.
func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) > MaxNameLength {
		return string(runes[:MaxNameLength])
	}
	return name
}
