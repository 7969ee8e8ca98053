package engine

import (
	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

type useItemTransition struct{}

func (useItemTransition) locate(s *gstate.GameState, a Action) (*gstate.ActorState, int, error) {
	actor := s.Entities.FindActor(a.Actor)
	if actor == nil {
		return nil, -1, errs.New(errs.KindActorNotFound, "use-item actor not found")
	}
	if a.Input.ItemID == nil {
		return nil, -1, errs.New(errs.KindInvalidTgt, "use-item requires an item")
	}
	for i, slot := range actor.Inventory {
		if slot.ItemID == *a.Input.ItemID {
			return actor, i, nil
		}
	}
	return actor, -1, errs.New(errs.KindInvalidTgt, "item not in inventory")
}

func (t useItemTransition) PreValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	actor, idx, err := t.locate(s, a)
	if err != nil {
		return err
	}
	if !actor.Alive() {
		return errs.New(errs.KindInvalidActor, "dead actors cannot use items")
	}
	if actor.Inventory[idx].Quantity == 0 {
		return errs.New(errs.KindNoResources, "item stack is empty")
	}
	return nil
}

func (t useItemTransition) Apply(s *gstate.GameState, env oracle.Env, a Action) error {
	actor, idx, err := t.locate(s, a)
	if err != nil {
		return err
	}
	item := s.Entities.FindItem(*a.Input.ItemID)
	var profile oracle.ActionProfile
	if item != nil {
		if def, derr := env.Item(item.DefID); derr == nil {
			if p, perr := env.Profile(gstate.ActionUseItem); perr == nil && def.ID != "" {
				profile = p
			}
		}
	}

	ctx := effectContext{State: s, Env: env, Actor: actor, Target: actor}
	if err := applyEffects(ctx, profile.Effects); err != nil {
		return err
	}

	actor.Inventory[idx].Quantity--
	if actor.Inventory[idx].Quantity == 0 {
		actor.Inventory = append(actor.Inventory[:idx], actor.Inventory[idx+1:]...)
	}
	return nil
}

func (useItemTransition) PostValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	return nil
}
