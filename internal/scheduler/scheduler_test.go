package scheduler

import (
	"testing"

	"github.com/ocx/roguevm/internal/engine"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

func buildState() (*gstate.GameState, oracle.Env) {
	s := gstate.New(1)
	pos := gstate.Position{X: 0, Y: 0}
	s.Entities.Player = &gstate.ActorState{ID: gstate.PlayerID, Position: &pos, Resources: gstate.Resources{HP: 10, MaxHP: 10}}
	npcPos := gstate.Position{X: 1, Y: 1}
	s.Entities.NPCs = []gstate.ActorState{{ID: 2, Position: &npcPos, Resources: gstate.Resources{HP: 10, MaxHP: 10}}}
	env := oracle.NewEmpty().WithBounds(20, 20).WithConfig("activation_radius", 10).AsEnv()
	return s, env
}

func TestRunActivationActivatesNearbyNPC(t *testing.T) {
	s, env := buildState()
	sched := New(engine.NewEngine())

	if _, err := sched.RunActivation(s, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sched.Active(s, gstate.PlayerID) {
		t.Fatal("expected the player to always be active after RunActivation")
	}
	if !sched.Active(s, gstate.EntityID(2)) {
		t.Fatal("expected a nearby NPC to be activated")
	}
}

func TestRunActivationScalesWakeupDelayByNPCSpeed(t *testing.T) {
	s, env := buildState()
	npc := &s.Entities.NPCs[0]
	npc.Bonuses = gstate.NewBonuses()
	npc.Bonuses.Speed["physical"] = gstate.BonusStack{Flat: []gstate.Bonus{{Amount: 100}}}

	sched := New(engine.NewEngine())
	if _, err := sched.RunActivation(s, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if npc.ReadyAt == nil {
		t.Fatal("expected the activated NPC to have a ready_at")
	}
	if *npc.ReadyAt != 50 {
		t.Fatalf("expected a physical speed of 200 to halve the base 100-tick wakeup delay to 50, got %d", *npc.ReadyAt)
	}
}

func TestPrepareNextTurnFailsWithNoActiveEntities(t *testing.T) {
	s, env := buildState()
	sched := New(engine.NewEngine())
	if _, err := sched.PrepareNextTurn(s, env); err == nil {
		t.Fatal("expected PrepareNextTurn to fail before anything has been activated")
	}
}

func TestPrepareNextTurnPicksLowestReadyAt(t *testing.T) {
	s, env := buildState()
	sched := New(engine.NewEngine())
	sched.Activate(s, gstate.PlayerID)
	sched.Activate(s, gstate.EntityID(2))

	earlier := gstate.Tick(5)
	later := gstate.Tick(50)
	s.Entities.Player.ReadyAt = &later
	s.Entities.NPCs[0].ReadyAt = &earlier

	if _, err := sched.PrepareNextTurn(s, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Turn.CurrentActor != gstate.EntityID(2) {
		t.Fatalf("expected the NPC with the earlier ready_at to be scheduled, got %v", s.Turn.CurrentActor)
	}
	if s.Turn.Clock != earlier {
		t.Fatalf("expected the clock to advance to the winner's ready_at, got %v", s.Turn.Clock)
	}
}

func TestManualActivateAndDeactivate(t *testing.T) {
	s, _ := buildState()
	sched := New(engine.NewEngine())
	sched.Activate(s, gstate.EntityID(2))
	if !sched.Active(s, gstate.EntityID(2)) {
		t.Fatal("expected manual Activate to take effect")
	}
	sched.Deactivate(s, gstate.EntityID(2))
	if sched.Active(s, gstate.EntityID(2)) {
		t.Fatal("expected manual Deactivate to take effect")
	}
}
