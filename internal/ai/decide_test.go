package ai

import (
	"testing"

	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

func livingActor(id gstate.EntityID, faction string, pos gstate.Position) *gstate.ActorState {
	return &gstate.ActorState{
		ID:        id,
		Position:  &pos,
		Faction:   faction,
		Resources: gstate.Resources{HP: 10, MaxHP: 10},
		Actions:   []gstate.ActionKind{gstate.ActionMove, gstate.ActionAttack, gstate.ActionWait},
	}
}

func TestDecideReturnsWaitForDeadActor(t *testing.T) {
	state := gstate.New(1)
	state.Entities.NPCs = []gstate.ActorState{{ID: 2, Resources: gstate.Resources{HP: 0, MaxHP: 10}}}
	env := oracle.NewEmpty().WithBounds(10, 10).AsEnv()

	action := Decide(state, env, 2)
	if action.Kind != gstate.ActionWait {
		t.Fatalf("expected a dead actor to always Wait, got %v", action.Kind)
	}
}

func TestDecideReturnsWaitForUnknownEntity(t *testing.T) {
	state := gstate.New(1)
	env := oracle.NewEmpty().WithBounds(10, 10).AsEnv()
	action := Decide(state, env, 999)
	if action.Kind != gstate.ActionWait {
		t.Fatalf("expected Decide to fall back to Wait for an unknown entity, got %v", action.Kind)
	}
}

func TestDecidePrefersAttackingAnAdjacentEnemy(t *testing.T) {
	state := gstate.New(1)
	self := livingActor(2, "goblins", gstate.Position{X: 0, Y: 0})
	self.TraitProfile = uniform(240) // maximize aggression personality
	enemy := livingActor(gstate.PlayerID, "players", gstate.Position{X: 1, Y: 0})
	state.Entities.NPCs = []gstate.ActorState{*self}
	state.Entities.Player = enemy

	env := oracle.NewEmpty().WithBounds(10, 10).
		WithAction(oracle.ActionProfile{Kind: gstate.ActionAttack, Range: 1}).
		WithConfig("activation_radius", 10).
		AsEnv()

	action := Decide(state, env, 2)
	if action.Kind != gstate.ActionAttack {
		t.Fatalf("expected an aggressive actor adjacent to an enemy to attack, got %v", action.Kind)
	}
	if action.Input.Target == nil || *action.Input.Target != gstate.PlayerID {
		t.Fatal("expected the attack to target the player")
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	build := func() (*gstate.GameState, oracle.Env) {
		state := gstate.New(1)
		self := livingActor(2, "goblins", gstate.Position{X: 0, Y: 0})
		state.Entities.NPCs = []gstate.ActorState{*self}
		env := oracle.NewEmpty().WithBounds(10, 10).AsEnv()
		return state, env
	}

	s1, e1 := build()
	s2, e2 := build()
	a1 := Decide(s1, e1, 2)
	a2 := Decide(s2, e2, 2)
	if a1.Kind != a2.Kind {
		t.Fatalf("expected Decide to be deterministic for identical inputs, got %v and %v", a1.Kind, a2.Kind)
	}
}
