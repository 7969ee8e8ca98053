package bus

import (
	"errors"
	"testing"

	"github.com/ocx/roguevm/internal/gstate"
)

func TestToWireEventFlattensErrAndFields(t *testing.T) {
	e := &Event{
		Kind:      KindActionFailed,
		SessionID: "sess-1",
		Nonce:     gstate.Nonce(3),
		Actor:     gstate.PlayerID,
		Err:       errors.New("whoops"),
	}
	w := toWireEvent(e)
	if w.Kind != string(KindActionFailed) || w.SessionID != "sess-1" || w.Nonce != 3 {
		t.Fatalf("unexpected wire event: %+v", w)
	}
	if w.Error != "whoops" {
		t.Fatalf("expected the error to be flattened to a string, got %q", w.Error)
	}
}

func TestToWireEventOmitsErrorWhenNil(t *testing.T) {
	w := toWireEvent(&Event{Kind: KindTurnPrepared})
	if w.Error != "" {
		t.Fatalf("expected no error string for a non-error event, got %q", w.Error)
	}
}
