package engine

import (
	"testing"

	"github.com/ocx/roguevm/internal/gstate"
)

func TestInteractTogglesUnlockedProp(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	s.Entities.Props = []gstate.PropState{{ID: gstate.EntityID(5), Position: gstate.Position{X: 2, Y: 3}, Kind: "door"}}
	env := testEnv()

	target := gstate.EntityID(5)
	if _, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionInteract, Input: Input{Target: &target}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.Entities.Props[0].Open {
		t.Fatal("expected interacting with a closed unlocked door to open it")
	}
}

func TestInteractRejectsLockedProp(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	s.Entities.Props = []gstate.PropState{{ID: gstate.EntityID(5), Position: gstate.Position{X: 2, Y: 3}, Kind: "door", Locked: true}}
	env := testEnv()

	target := gstate.EntityID(5)
	if _, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionInteract, Input: Input{Target: &target}}); err == nil {
		t.Fatal("expected interacting with a locked prop to fail")
	}
}

func TestInteractPicksUpGroundItemIntoInventory(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	itemPos := gstate.Position{X: 2, Y: 3}
	s.Entities.Items = []gstate.ItemState{{ID: gstate.EntityID(9), Position: &itemPos, DefID: "potion", Quantity: 3}}
	if err := s.World.Add(itemPos, gstate.EntityID(9)); err != nil {
		t.Fatal(err)
	}
	env := testEnv()

	target := gstate.EntityID(9)
	if _, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionInteract, Input: Input{Target: &target}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Entities.Items[0].Position != nil {
		t.Fatal("expected the picked-up item to no longer have a world position")
	}
	if len(s.Entities.Player.Inventory) != 1 || s.Entities.Player.Inventory[0].Quantity != 3 {
		t.Fatalf("expected the item to land in the player's inventory, got %+v", s.Entities.Player.Inventory)
	}
	if s.World.Has(itemPos, gstate.EntityID(9)) {
		t.Fatal("expected the item to be removed from world occupancy after pickup")
	}
}

func TestInteractRejectsOutOfRangeTarget(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	s.Entities.Props = []gstate.PropState{{ID: gstate.EntityID(5), Position: gstate.Position{X: 9, Y: 9}, Kind: "door"}}
	env := testEnv()

	target := gstate.EntityID(5)
	if _, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionInteract, Input: Input{Target: &target}}); err == nil {
		t.Fatal("expected interacting with a far-away prop to fail")
	}
}
