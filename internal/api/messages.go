package api

import (
	"encoding/json"

	"dodge-royale/internal/game"
)

// Client message types accepted over the websocket. Anything else is ignored.
const (
	MessageTypeInput   = "input"
	MessageTypeName    = "name"
	MessageTypeRestart = "restart"
)

// ClientMessage is the tagged variant for inbound websocket messages. One
// concrete type per message kind; payloads are validated and defaulted here
// at the boundary so the match core never sees a malformed value.
type ClientMessage interface {
	clientMessage()
}

// InputCommand carries the latest held-keys snapshot.
type InputCommand struct {
	Input game.Input
}

// NameCommand carries a display-name update.
type NameCommand struct {
	Name string
}

// RestartCommand requests a round reset (honored only in GameOver).
type RestartCommand struct{}

func (InputCommand) clientMessage()   {}
func (NameCommand) clientMessage()    {}
func (RestartCommand) clientMessage() {}

type messageEnvelope struct {
	Type string `json:"type"`
}

type inputPayload struct {
	Up    *bool `json:"up"`
	Down  *bool `json:"down"`
	Left  *bool `json:"left"`
	Right *bool `json:"right"`
}

type namePayload struct {
	Name string `json:"name"`
}

// ParseClientMessage decodes one websocket text message. Unknown or garbled
// messages return (nil, false) and are dropped by the caller; missing or
// malformed input flags default to "not held" rather than erroring, per the
// last-write-wins input model.
func ParseClientMessage(data []byte) (ClientMessage, bool) {
	var env messageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, false
	}

	switch env.Type {
	case MessageTypeInput:
		var p inputPayload
		// A decode error still yields a valid all-false snapshot.
		_ = json.Unmarshal(data, &p)
		return InputCommand{Input: game.Input{
			Up:    boolOrFalse(p.Up),
			Down:  boolOrFalse(p.Down),
			Left:  boolOrFalse(p.Left),
			Right: boolOrFalse(p.Right),
		}}, true

	case MessageTypeName:
		var p namePayload
		if err := json.Unmarshal(data, &p); err != nil || p.Name == "" {
			return nil, false
		}
		return NameCommand{Name: p.Name}, true

	case MessageTypeRestart:
		return RestartCommand{}, true
	}

	return nil, false
}

func boolOrFalse(b *bool) bool {
	return b != nil && *b
}
