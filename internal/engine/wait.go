package engine

import (
	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

// waitTransition is the no-op action: its only effect flows from the
// ActionCost hook it triggers afterward.
type waitTransition struct{}

func (waitTransition) PreValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	if s.Entities.FindActor(a.Actor) == nil {
		return errs.New(errs.KindActorNotFound, "wait actor not found")
	}
	return nil
}

func (waitTransition) Apply(s *gstate.GameState, env oracle.Env, a Action) error { return nil }

func (waitTransition) PostValidate(s *gstate.GameState, env oracle.Env, a Action) error { return nil }
