package hooks

import (
	"testing"

	"github.com/ocx/roguevm/internal/gstate"
)

func TestActivationShouldTriggerOnlyOnPlayerMove(t *testing.T) {
	h := Activation{}
	if !h.ShouldTrigger(Context{SourceAct: gstate.ActionRef{Kind: gstate.ActionMove, Actor: gstate.PlayerID}}) {
		t.Fatal("expected Activation to trigger on a player move")
	}
	if h.ShouldTrigger(Context{SourceAct: gstate.ActionRef{Kind: gstate.ActionMove, Actor: gstate.EntityID(2)}}) {
		t.Fatal("expected Activation not to trigger on an NPC move")
	}
	if h.ShouldTrigger(Context{SourceAct: gstate.ActionRef{Kind: gstate.ActionAttack, Actor: gstate.PlayerID}}) {
		t.Fatal("expected Activation not to trigger on a non-move player action")
	}
}

func TestActivationCreateActionsEnqueuesSystemActivation(t *testing.T) {
	h := Activation{}
	specs, err := h.CreateActions(Context{SourceAct: gstate.ActionRef{Kind: gstate.ActionMove, Actor: gstate.PlayerID}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(specs) != 1 || specs[0].Kind != gstate.ActionActivation || specs[0].Actor != gstate.SystemID {
		t.Fatalf("expected a single system Activation action spec, got %+v", specs)
	}
}
