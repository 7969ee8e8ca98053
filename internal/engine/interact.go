package engine

import (
	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

// interactTransition handles the two world-object interactions that
// don't warrant their own ActionKind: toggling a prop (door, lever,
// chest) and picking up a ground item into inventory.
type interactTransition struct{}

const interactRange = 1

func (interactTransition) locate(s *gstate.GameState, a Action) (*gstate.ActorState, *gstate.PropState, *gstate.ItemState, error) {
	actor := s.Entities.FindActor(a.Actor)
	if actor == nil {
		return nil, nil, nil, errs.New(errs.KindActorNotFound, "interact actor not found")
	}
	if a.Input.Target == nil {
		return nil, nil, nil, errs.New(errs.KindInvalidTgt, "interact requires a target")
	}
	if prop := s.Entities.FindProp(*a.Input.Target); prop != nil {
		return actor, prop, nil, nil
	}
	if item := s.Entities.FindItem(*a.Input.Target); item != nil {
		return actor, nil, item, nil
	}
	return actor, nil, nil, errs.New(errs.KindTargetNotFound, "interact target not found")
}

func (t interactTransition) PreValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	actor, prop, item, err := t.locate(s, a)
	if err != nil {
		return err
	}
	if !actor.Alive() {
		return errs.New(errs.KindInvalidActor, "dead actors cannot interact")
	}
	if actor.Position == nil {
		return errs.New(errs.KindInvalidActor, "actor has no position")
	}
	switch {
	case prop != nil:
		if actor.Position.Chebyshev(prop.Position) > interactRange {
			return errs.New(errs.KindOutOfRange, "prop out of interact range")
		}
		if prop.Locked {
			return errs.New(errs.KindBlocked, "prop is locked")
		}
	case item != nil:
		if item.Position == nil || actor.Position.Chebyshev(*item.Position) > interactRange {
			return errs.New(errs.KindOutOfRange, "item out of interact range")
		}
	}
	return nil
}

func (t interactTransition) Apply(s *gstate.GameState, env oracle.Env, a Action) error {
	actor, prop, item, err := t.locate(s, a)
	if err != nil {
		return err
	}
	if prop != nil {
		prop.Open = !prop.Open
		return nil
	}
	return pickupItem(s, actor, item)
}

func pickupItem(s *gstate.GameState, actor *gstate.ActorState, item *gstate.ItemState) error {
	if item.Position != nil {
		if err := s.World.Remove(*item.Position, item.ID); err != nil {
			return err
		}
	}
	item.Position = nil
	for i := range actor.Inventory {
		if actor.Inventory[i].ItemID == item.ID {
			actor.Inventory[i].Quantity += item.Quantity
			return nil
		}
	}
	actor.Inventory = append(actor.Inventory, gstate.InventorySlot{ItemID: item.ID, Quantity: item.Quantity})
	return nil
}

func (interactTransition) PostValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	return s.ValidateOccupancy()
}
