package engine

import (
	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

// effectContext carries everything an Effect needs without letting effect
// application reach back into the whole GameState — effects are pure
// given their context.
type effectContext struct {
	State  *gstate.GameState
	Env    oracle.Env
	Actor  *gstate.ActorState
	Target *gstate.ActorState // nil for self-only effects
	Roll   int32              // [0, 100)
}

func scalingSource(actor *gstate.ActorState, stat string) float64 {
	effective, derived, _, _ := actor.Derive()
	switch stat {
	case "str":
		return float64(effective.STR)
	case "dex":
		return float64(effective.DEX)
	case "weapon", "attack":
		return float64(derived.Attack)
	default:
		return 0
	}
}

// applyEffects runs an ActionProfile's effect chain in order. Each effect
// is independent; a later effect seeing an already-mutated
// actor (e.g. Knockback after Damage) is intentional chaining, not a bug.
func applyEffects(ctx effectContext, effects []oracle.Effect) error {
	for _, e := range effects {
		if err := applyEffect(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func applyEffect(ctx effectContext, e oracle.Effect) error {
	switch e.Kind {
	case oracle.EffectDamage:
		if ctx.Target == nil {
			return errs.New(errs.KindInvalidTgt, "Damage effect requires a target")
		}
		scaled := float64(e.BaseAmount) + scalingSource(ctx.Actor, e.ScalingStat)*e.ScalingFactor
		_, targetDerived, _, _ := ctx.Target.Derive()
		amount := int32(scaled) - targetDerived.AC/2
		if amount < e.MinAmount {
			amount = e.MinAmount
		}
		if amount < 0 {
			amount = 0
		}
		ctx.Target.Resources.HP -= amount
		ctx.Target.Resources.Clamp()
		return nil

	case oracle.EffectHeal:
		target := ctx.Target
		if target == nil {
			target = ctx.Actor
		}
		scaled := float64(e.BaseAmount) + scalingSource(ctx.Actor, e.ScalingStat)*e.ScalingFactor
		amount := int32(scaled)
		if amount < e.MinAmount {
			amount = e.MinAmount
		}
		target.Resources.HP += amount
		target.Resources.Clamp()
		return nil

	case oracle.EffectKnockback:
		if ctx.Target == nil || ctx.Target.Position == nil || ctx.Actor.Position == nil {
			return nil
		}
		return applyKnockback(ctx, e.KnockbackDist)

	case oracle.EffectMoveSelf, oracle.EffectMoveTarget, oracle.EffectAcquireItem,
		oracle.EffectUseConsumable, oracle.EffectSwap:
		// Handled by their owning transition (UseItem/Interact), which has
		// the inventory and prop context an effect alone does not carry.
		return nil

	default:
		return errs.New(errs.KindNotImplemented, "unknown effect kind: "+string(e.Kind))
	}
}

func applyKnockback(ctx effectContext, dist int32) error {
	if dist <= 0 {
		return nil
	}
	origin, target := *ctx.Actor.Position, *ctx.Target.Position
	dx, dy := target.X-origin.X, target.Y-origin.Y
	if dx != 0 {
		dx = dx / abs(dx)
	}
	if dy != 0 {
		dy = dy / abs(dy)
	}
	dest := gstate.Position{X: target.X + dx*dist, Y: target.Y + dy*dist}
	if !ctx.Env.InBounds(dest) || !ctx.Env.IsPassable(dest) {
		return nil // a blocked knockback is simply absorbed, not an error.
	}
	if len(ctx.State.World.At(dest)) >= gstate.TileOccupantCap {
		return nil
	}
	if err := ctx.State.World.Remove(target, ctx.Target.ID); err != nil {
		return err
	}
	if err := ctx.State.World.Add(dest, ctx.Target.ID); err != nil {
		_ = ctx.State.World.Add(target, ctx.Target.ID)
		return nil
	}
	ctx.Target.Position = &dest
	return nil
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
