package ai

import (
	"testing"

	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

func TestEnumerateAvailableActionsCrossesAbilitiesWithLegalTargets(t *testing.T) {
	state := gstate.New(1)
	self := livingActor(2, "goblins", gstate.Position{X: 0, Y: 0})
	self.Actions = []gstate.ActionKind{gstate.ActionMove, gstate.ActionAttack, gstate.ActionWait}
	enemy := livingActor(gstate.PlayerID, "players", gstate.Position{X: 5, Y: 5})
	state.Entities.NPCs = []gstate.ActorState{*self}
	state.Entities.Player = enemy

	available := enumerateAvailableActions(state, self)

	var moves, attacks, waits int
	for _, a := range available {
		switch a.Kind {
		case gstate.ActionMove:
			moves++
		case gstate.ActionAttack:
			attacks++
			if a.Target == nil || *a.Target != gstate.PlayerID {
				t.Fatalf("expected the lone enemy as the attack target, got %+v", a)
			}
		case gstate.ActionWait:
			waits++
		}
	}
	if moves != 8 {
		t.Fatalf("expected all 8 directions enumerated for Move, got %d", moves)
	}
	if attacks != 1 {
		t.Fatalf("expected exactly one attack candidate (the lone living enemy), got %d", attacks)
	}
	if waits != 1 {
		t.Fatalf("expected Wait always present as the fallback candidate, got %d", waits)
	}
}

func TestResolveAvailableActionPicksArgmaxAttackTarget(t *testing.T) {
	state := gstate.New(1)
	self := livingActor(2, "goblins", gstate.Position{X: 0, Y: 0})
	self.TraitProfile = uniform(240)
	near := livingActor(3, "players", gstate.Position{X: 1, Y: 0})
	far := livingActor(4, "players", gstate.Position{X: 10, Y: 0})
	state.Entities.NPCs = []gstate.ActorState{*self, *near, *far}

	available := enumerateAvailableActions(state, state.Entities.FindActor(2))
	action, ok := resolveAvailableAction(TacticAttackNearest, available, state, state.Entities.FindActor(2))
	if !ok {
		t.Fatal("expected an attack candidate to resolve")
	}
	if action.Target == nil || *action.Target != gstate.EntityID(3) {
		t.Fatalf("expected the nearer enemy to win the argmax, got %+v", action)
	}
}

func TestResolveAvailableActionFallsBackWhenNoCandidateScoresAboveZero(t *testing.T) {
	state := gstate.New(1)
	self := livingActor(2, "goblins", gstate.Position{X: 0, Y: 0})
	self.Actions = []gstate.ActionKind{gstate.ActionWait}
	state.Entities.NPCs = []gstate.ActorState{*self}

	available := enumerateAvailableActions(state, state.Entities.FindActor(2))
	if _, ok := resolveAvailableAction(TacticAttackNearest, available, state, state.Entities.FindActor(2)); ok {
		t.Fatal("expected a tactic with no matching candidates to fail to resolve")
	}
}

func TestDecidePrefersClosestEnemyAmongMultipleAttackCandidates(t *testing.T) {
	state := gstate.New(1)
	self := livingActor(2, "goblins", gstate.Position{X: 0, Y: 0})
	self.TraitProfile = uniform(240)
	near := livingActor(gstate.PlayerID, "players", gstate.Position{X: 1, Y: 0})
	far := livingActor(4, "players", gstate.Position{X: 10, Y: 0})
	state.Entities.NPCs = []gstate.ActorState{*self, *far}
	state.Entities.Player = near

	env := oracle.NewEmpty().WithBounds(20, 20).
		WithAction(oracle.ActionProfile{Kind: gstate.ActionAttack, Range: 20}).
		WithConfig("activation_radius", 20).
		AsEnv()
	action := Decide(state, env, 2)
	if action.Kind != gstate.ActionAttack {
		t.Fatalf("expected an attack, got %v", action.Kind)
	}
	if action.Input.Target == nil || *action.Input.Target != gstate.PlayerID {
		t.Fatalf("expected Decide to target the nearer enemy via argmax, got %+v", action.Input.Target)
	}
}
