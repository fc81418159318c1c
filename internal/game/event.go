package game

import (
	"encoding/json"
	"time"
)

// EventType classifies match journal entries.
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypePlayerJoin
	EventTypePlayerLeave
	EventTypePhaseChange
	EventTypeArenaShrink
	EventTypeElimination
	EventTypeWinner
	EventTypeRoundReset
)

// Elimination causes recorded in EliminationPayload.
const (
	EliminationByBoundary = "boundary"
	EliminationByObstacle = "obstacle"
)

// EventVersion allows the journal format to evolve.
const EventVersion uint8 = 1

// Event is one journal entry. Payload is pre-encoded JSON so the async
// writer never touches live match state.
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic journal sequence
	Tick      uint64    `json:"tick"`      // Match tick this occurred in
	SessionID string    `json:"sessionId"` // Source session, if any
	Payload   []byte    `json:"payload"`
}

// String returns a human-readable event type.
func (t EventType) String() string {
	switch t {
	case EventTypePlayerJoin:
		return "player_join"
	case EventTypePlayerLeave:
		return "player_leave"
	case EventTypePhaseChange:
		return "phase_change"
	case EventTypeArenaShrink:
		return "arena_shrink"
	case EventTypeElimination:
		return "elimination"
	case EventTypeWinner:
		return "winner"
	case EventTypeRoundReset:
		return "round_reset"
	default:
		return "unknown"
	}
}

// Typed payloads per event kind.

// PlayerJoinPayload records a join with the assigned spawn slot.
type PlayerJoinPayload struct {
	SessionID string  `json:"sessionId"`
	Name      string  `json:"name"`
	Index     int     `json:"index"`
	SpawnX    float64 `json:"spawnX"`
	SpawnY    float64 `json:"spawnY"`
}

// PlayerLeavePayload records a disconnect.
type PlayerLeavePayload struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
}

// PhaseChangePayload records a lifecycle transition.
type PhaseChangePayload struct {
	Phase string `json:"phase"`
}

// ArenaShrinkPayload records a boundary shrink.
type ArenaShrinkPayload struct {
	AreaPercentage float64 `json:"areaPercentage"`
}

// EliminationPayload records a death with its cause and final position.
type EliminationPayload struct {
	SessionID string  `json:"sessionId"`
	Name      string  `json:"name"`
	Cause     string  `json:"cause"` // boundary | obstacle
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// WinnerPayload records the round outcome.
type WinnerPayload struct {
	Winner string `json:"winner"`
}

// NewEvent creates a journal entry with the current timestamp.
func NewEvent(eventType EventType, tick uint64, sessionID string, payload interface{}) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		Tick:      tick,
		SessionID: sessionID,
		Payload:   data,
	}
}
