package api

import (
	"testing"

	"dodge-royale/internal/game"
)

// TestParseInputMessage verifies held-key decoding with missing flags
// defaulting to not-held
func TestParseInputMessage(t *testing.T) {
	msg, ok := ParseClientMessage([]byte(`{"type":"input","up":true,"right":true}`))
	if !ok {
		t.Fatal("valid input message rejected")
	}
	cmd, isInput := msg.(InputCommand)
	if !isInput {
		t.Fatalf("expected InputCommand, got %T", msg)
	}
	if !cmd.Input.Up || !cmd.Input.Right {
		t.Error("held flags lost in decoding")
	}
	if cmd.Input.Down || cmd.Input.Left {
		t.Error("missing flags must default to not held")
	}
}

// TestParseInputMessageEmptyPayload verifies a bare input message yields the
// all-false snapshot instead of an error
func TestParseInputMessageEmptyPayload(t *testing.T) {
	msg, ok := ParseClientMessage([]byte(`{"type":"input"}`))
	if !ok {
		t.Fatal("bare input message rejected")
	}
	cmd := msg.(InputCommand)
	if cmd.Input != (game.Input{}) {
		t.Error("expected all-false input snapshot")
	}
}

// TestParseNameMessage verifies the name command and the empty-name drop
func TestParseNameMessage(t *testing.T) {
	msg, ok := ParseClientMessage([]byte(`{"type":"name","name":"Cleo"}`))
	if !ok {
		t.Fatal("valid name message rejected")
	}
	if cmd := msg.(NameCommand); cmd.Name != "Cleo" {
		t.Errorf("expected Cleo, got %q", cmd.Name)
	}

	if _, ok := ParseClientMessage([]byte(`{"type":"name","name":""}`)); ok {
		t.Error("empty name must be dropped")
	}
	if _, ok := ParseClientMessage([]byte(`{"type":"name"}`)); ok {
		t.Error("missing name must be dropped")
	}
}

// TestParseRestartMessage verifies the payload-free restart command
func TestParseRestartMessage(t *testing.T) {
	msg, ok := ParseClientMessage([]byte(`{"type":"restart"}`))
	if !ok {
		t.Fatal("restart message rejected")
	}
	if _, isRestart := msg.(RestartCommand); !isRestart {
		t.Fatalf("expected RestartCommand, got %T", msg)
	}
}

// TestParseGarbageDropped verifies unknown and malformed messages are dropped
// without error
func TestParseGarbageDropped(t *testing.T) {
	cases := []string{
		`not json at all`,
		`{"type":"teleport","x":1}`,
		`{"no":"type"}`,
		``,
		`42`,
	}
	for _, raw := range cases {
		if _, ok := ParseClientMessage([]byte(raw)); ok {
			t.Errorf("message %q should have been dropped", raw)
		}
	}
}
