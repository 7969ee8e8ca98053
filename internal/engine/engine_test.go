package engine

import (
	"testing"

	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

func newTestState() *gstate.GameState {
	s := gstate.New(1)
	pos := gstate.Position{X: 2, Y: 2}
	s.Entities.Player = &gstate.ActorState{
		ID:        gstate.PlayerID,
		Position:  &pos,
		Resources: gstate.Resources{HP: 10, MaxHP: 10},
		Core:      gstate.CoreStats{STR: 10, CON: 10, DEX: 10, INT: 10, WIL: 10, EGO: 10},
		Actions:   []gstate.ActionKind{gstate.ActionMove, gstate.ActionWait, gstate.ActionAttack},
		Bonuses:   gstate.NewBonuses(),
	}
	if err := s.World.Add(pos, gstate.PlayerID); err != nil {
		panic(err)
	}
	return s
}

func testEnv() oracle.Env {
	return oracle.NewEmpty().
		WithBounds(10, 10).
		WithAction(oracle.ActionProfile{Kind: gstate.ActionMove, BaseCost: 100}).
		WithAction(oracle.ActionProfile{Kind: gstate.ActionWait, BaseCost: 100}).
		WithAction(oracle.ActionProfile{Kind: gstate.ActionAttack, BaseCost: 100, Range: 1}).
		WithConfig("activation_radius", 8).
		AsEnv()
}

func TestEngineExecuteMoveUpdatesPositionAndOccupancy(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	env := testEnv()

	east := gstate.East
	_, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionMove, Input: Input{Direction: &east}})
	if err != nil {
		t.Fatalf("unexpected error executing move: %v", err)
	}

	want := gstate.Position{X: 3, Y: 2}
	if *s.Entities.Player.Position != want {
		t.Fatalf("expected player to have moved to %v, got %v", want, *s.Entities.Player.Position)
	}
	if !s.World.Has(want, gstate.PlayerID) {
		t.Fatal("expected the new tile to list the player as an occupant")
	}
	if s.World.Has(gstate.Position{X: 2, Y: 2}, gstate.PlayerID) {
		t.Fatal("expected the old tile to no longer list the player")
	}
	if err := s.ValidateOccupancy(); err != nil {
		t.Fatalf("expected occupancy to remain consistent after a move, got %v", err)
	}
}

func TestEngineExecuteMoveOutOfBoundsFails(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	s.Entities.Player.Position = &gstate.Position{X: 0, Y: 0}
	s.World = gstate.NewWorld()
	_ = s.World.Add(*s.Entities.Player.Position, gstate.PlayerID)
	env := testEnv()

	west := gstate.West
	if _, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionMove, Input: Input{Direction: &west}}); err == nil {
		t.Fatal("expected moving out of bounds to fail")
	}
}

func TestEngineExecuteMoveTriggersActionCostHook(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	env := testEnv()
	if s.Entities.Player.ReadyAt != nil {
		t.Fatal("expected a freshly constructed test actor to start with no ready_at")
	}

	east := gstate.East
	if _, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionMove, Input: Input{Direction: &east}}); err != nil {
		t.Fatal(err)
	}
	if s.Entities.Player.ReadyAt == nil {
		t.Fatal("expected the ActionCost hook to set the player's ready_at after a move")
	}
}

func TestEngineExecuteUnknownActionKind(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	env := testEnv()
	if _, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionKind("Bogus")}); err == nil {
		t.Fatal("expected executing an unregistered action kind to fail")
	}
}

// TestEngineExecuteHookChainDepthBoundary drives execute's depth
// parameter directly at the boundary. It uses ActionActionCost as the
// probe action because neither default hook (ActionCost, Activation)
// re-triggers on it (see their ShouldTrigger), so the call does not
// itself recurse further — isolating the depth check from the hook
// chain's own fan-out.
func TestEngineExecuteHookChainDepthBoundary(t *testing.T) {
	e := NewEngine()
	env := testEnv()
	cost := gstate.Tick(10)
	probe := Action{Actor: gstate.PlayerID, Kind: gstate.ActionActionCost, Input: Input{Cost: &cost}}

	s := newTestState()
	if _, err := e.execute(s, env, probe, maxHookDepth); err != nil {
		t.Fatalf("expected depth %d to succeed, got %v", maxHookDepth, err)
	}

	s = newTestState()
	if _, err := e.execute(s, env, probe, maxHookDepth+1); err == nil {
		t.Fatalf("expected depth %d to fail with HookChainTooDeep", maxHookDepth+1)
	} else if !errs.Is(err, errs.KindHookChainTooDeep) {
		t.Fatalf("expected KindHookChainTooDeep, got %v", err)
	}
}

func TestEngineExecuteWaitProducesDelta(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	env := testEnv()
	delta, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionWait})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delta.IsEmpty() {
		t.Fatal("expected a Wait to still produce a non-empty delta via the ActionCost hook")
	}
}
