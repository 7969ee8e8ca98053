package hooks

import "github.com/ocx/roguevm/internal/gstate"

// ActionCost fires after every player/AI action (never after another
// system action) and enqueues an ActionCost action carrying the
// precomputed ready_at advance for the acting entity.
type ActionCost struct{}

func (ActionCost) Name() string            { return "action_cost" }
func (ActionCost) Priority() int           { return 100 }
func (ActionCost) Criticality() Criticality { return Critical }

func (ActionCost) ShouldTrigger(ctx Context) bool {
	switch ctx.SourceAct.Kind {
	case gstate.ActionPrepareTurn, gstate.ActionActivation, gstate.ActionActionCost:
		return false
	default:
		return true
	}
}

func (h ActionCost) CreateActions(ctx Context) ([]ActionSpec, error) {
	actor := ctx.State.Entities.FindActor(ctx.SourceAct.Actor)
	if actor == nil {
		return nil, nil
	}
	cost := h.resolveCost(ctx, actor)
	return []ActionSpec{{
		Actor: ctx.SourceAct.Actor,
		Kind:  gstate.ActionActionCost,
		Cost:  &cost,
	}}, nil
}

// resolveCost maps the source action's kind onto the actor's matching
// speed domain, scaled by the oracle's base_cost for that action (falling
// back to a flat 100-tick cost when the action carries no profile, e.g.
// Wait) and by the actor's active status-effect cost_multiplier.
func (h ActionCost) resolveCost(ctx Context, actor *gstate.ActorState) gstate.Tick {
	_, _, speed, _ := actor.Derive()
	domain := speed.Physical
	switch ctx.SourceAct.Kind {
	case gstate.ActionUseItem:
		domain = speed.Ritual
	case gstate.ActionInteract:
		domain = speed.Cognitive
	}

	base := gstate.Tick(100)
	if profile, err := ctx.Env.Profile(ctx.SourceAct.Kind); err == nil && profile.BaseCost > 0 {
		base = profile.BaseCost
	}
	if domain <= 0 {
		domain = 100
	}
	multiplier := gstate.CostMultiplier(actor.StatusEffects)
	// cost = base_cost * cost_multiplier / domain_speed, scaled by the
	// usual 100-unit speed baseline: a domain of 200 halves the cost and
	// 50 doubles it, before the status-effect multiplier is folded in.
	cost := float64(base) * multiplier * 100.0 / float64(domain)
	return gstate.Tick(cost)
}
