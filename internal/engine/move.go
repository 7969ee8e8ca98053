package engine

import (
	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

type moveTransition struct{}

func (moveTransition) target(s *gstate.GameState, a Action) (*gstate.ActorState, gstate.Position, error) {
	actor := s.Entities.FindActor(a.Actor)
	if actor == nil {
		return nil, gstate.Position{}, errs.New(errs.KindActorNotFound, "move actor not found")
	}
	if actor.Position == nil {
		return nil, gstate.Position{}, errs.New(errs.KindInvalidActor, "actor has no position")
	}
	if a.Input.Direction == nil {
		return nil, gstate.Position{}, errs.New(errs.KindInvalidTgt, "move requires a direction")
	}
	dx, dy := a.Input.Direction.Delta()
	dest := gstate.Position{X: actor.Position.X + dx, Y: actor.Position.Y + dy}
	return actor, dest, nil
}

func (t moveTransition) PreValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	actor, dest, err := t.target(s, a)
	if err != nil {
		return err
	}
	if !actor.Alive() {
		return errs.New(errs.KindInvalidActor, "dead actors cannot move")
	}
	if !env.InBounds(dest) {
		return errs.New(errs.KindOutOfBounds, "destination out of bounds")
	}
	if !env.IsPassable(dest) {
		return errs.New(errs.KindBlocked, "destination tile is not passable")
	}
	if len(s.World.At(dest)) >= gstate.TileOccupantCap && !s.World.Has(dest, actor.ID) {
		return errs.New(errs.KindOccupied, "destination tile is at capacity")
	}
	return nil
}

func (t moveTransition) Apply(s *gstate.GameState, env oracle.Env, a Action) error {
	actor, dest, err := t.target(s, a)
	if err != nil {
		return err
	}
	origin := *actor.Position
	if err := s.World.Remove(origin, actor.ID); err != nil {
		return err
	}
	if err := s.World.Add(dest, actor.ID); err != nil {
		// roll back the removal so a failed move never loses the actor.
		_ = s.World.Add(origin, actor.ID)
		return err
	}
	actor.Position = &dest
	return nil
}

func (moveTransition) PostValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	return s.ValidateOccupancy()
}
