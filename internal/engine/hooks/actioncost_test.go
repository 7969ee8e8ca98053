package hooks

import (
	"testing"

	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

func buildActor(id gstate.EntityID) *gstate.ActorState {
	return &gstate.ActorState{
		ID:      id,
		Core:    gstate.CoreStats{STR: 10, CON: 10, DEX: 10, INT: 10, WIL: 10, EGO: 10},
		Bonuses: gstate.NewBonuses(),
	}
}

func TestActionCostShouldTriggerExcludesSystemActions(t *testing.T) {
	h := ActionCost{}
	for _, kind := range []gstate.ActionKind{gstate.ActionPrepareTurn, gstate.ActionActivation, gstate.ActionActionCost} {
		if h.ShouldTrigger(Context{SourceAct: gstate.ActionRef{Kind: kind}}) {
			t.Fatalf("expected ActionCost not to trigger on system action %s", kind)
		}
	}
	if !h.ShouldTrigger(Context{SourceAct: gstate.ActionRef{Kind: gstate.ActionMove}}) {
		t.Fatal("expected ActionCost to trigger on a regular action")
	}
}

func TestActionCostResolveCostFallsBackToFlatCostWithoutProfile(t *testing.T) {
	h := ActionCost{}
	actor := buildActor(1)
	env := oracle.NewEmpty().AsEnv()
	ctx := Context{SourceAct: gstate.ActionRef{Kind: gstate.ActionWait, Actor: 1}, Env: env}

	cost := h.resolveCost(ctx, actor)
	if cost != 100 {
		t.Fatalf("expected a flat 100-tick cost with no matching oracle profile, got %d", cost)
	}
}

func TestActionCostResolveCostUsesRitualDomainForUseItem(t *testing.T) {
	h := ActionCost{}
	actor := buildActor(1)
	env := oracle.NewEmpty().
		WithAction(oracle.ActionProfile{Kind: gstate.ActionUseItem, BaseCost: 100}).
		AsEnv()
	ctx := Context{SourceAct: gstate.ActionRef{Kind: gstate.ActionUseItem, Actor: 1}, Env: env}

	cost := h.resolveCost(ctx, actor)
	_, _, speed, _ := actor.Derive()
	want := gstate.Tick(uint64(100) * 100 / uint64(speed.Ritual))
	if cost != want {
		t.Fatalf("expected cost scaled by ritual speed domain, got %d want %d", cost, want)
	}
}

func TestActionCostResolveCostScalesByStatusEffectMultiplier(t *testing.T) {
	h := ActionCost{}
	actor := buildActor(1)
	actor.StatusEffects = []gstate.StatusEffect{{ID: "hexed", Stacks: 1}}
	env := oracle.NewEmpty().AsEnv()
	ctx := Context{SourceAct: gstate.ActionRef{Kind: gstate.ActionWait, Actor: 1}, Env: env}

	cost := h.resolveCost(ctx, actor)
	if cost != 150 {
		t.Fatalf("expected hexed's 1.5x cost_multiplier to raise the flat 100-tick cost to 150, got %d", cost)
	}
}

func TestActionCostCreateActionsReturnsNilForUnknownActor(t *testing.T) {
	h := ActionCost{}
	s := gstate.New(1)
	ctx := Context{State: s, SourceAct: gstate.ActionRef{Kind: gstate.ActionMove, Actor: gstate.EntityID(999)}}
	specs, err := h.CreateActions(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if specs != nil {
		t.Fatalf("expected no action spec for an actor that no longer exists, got %+v", specs)
	}
}
