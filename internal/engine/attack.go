package engine

import (
	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

type attackTransition struct{}

func (attackTransition) actors(s *gstate.GameState, a Action) (*gstate.ActorState, *gstate.ActorState, error) {
	actor := s.Entities.FindActor(a.Actor)
	if actor == nil {
		return nil, nil, errs.New(errs.KindActorNotFound, "attack actor not found")
	}
	if a.Input.Target == nil {
		return nil, nil, errs.New(errs.KindInvalidTgt, "attack requires a target")
	}
	target := s.Entities.FindActor(*a.Input.Target)
	if target == nil {
		return nil, nil, errs.New(errs.KindTargetNotFound, "attack target not found")
	}
	return actor, target, nil
}

func (t attackTransition) PreValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	actor, target, err := t.actors(s, a)
	if err != nil {
		return err
	}
	if !actor.Alive() {
		return errs.New(errs.KindInvalidActor, "dead actors cannot attack")
	}
	if !target.Alive() {
		return errs.New(errs.KindInvalidTgt, "target is already dead")
	}
	if actor.ID == target.ID {
		return errs.New(errs.KindInvalidTgt, "cannot attack self")
	}
	if actor.Position == nil || target.Position == nil {
		return errs.New(errs.KindInvalidActor, "attacker or target has no position")
	}
	profile, err := env.Profile(gstate.ActionAttack)
	if err != nil {
		return err
	}
	if actor.Position.Chebyshev(*target.Position) > profile.Range {
		return errs.New(errs.KindOutOfRange, "target out of attack range")
	}
	return nil
}

func (t attackTransition) Apply(s *gstate.GameState, env oracle.Env, a Action) error {
	actor, target, err := t.actors(s, a)
	if err != nil {
		return err
	}
	profile, err := env.Profile(gstate.ActionAttack)
	if err != nil {
		return err
	}

	_, _, _, mods := actor.Derive()
	_, _, _, targetMods := target.Derive()
	hitChance := int32(60) + mods.HitChance - targetMods.DodgeRate
	hitChance = clampPercent(hitChance)

	roll := rollPercent(deterministicRoll(s.Seed, s.Turn.Nonce, actor.ID, target.ID))
	if roll >= hitChance {
		return nil // miss: action still costs its time per the ActionCost hook.
	}

	ctx := effectContext{State: s, Env: env, Actor: actor, Target: target, Roll: roll}
	return applyEffects(ctx, profile.Effects)
}

func clampPercent(v int32) int32 {
	if v < 5 {
		return 5
	}
	if v > 95 {
		return 95
	}
	return v
}

func (attackTransition) PostValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	return s.ValidateOccupancy()
}
