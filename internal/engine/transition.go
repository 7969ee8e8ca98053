package engine

import (
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

// Transition is the three-phase contract every ActionKind implements:
// pre_validate rejects malformed or illegal actions without mutating
// state, apply performs the single mutation the action stands for, and
// post_validate checks invariants the mutation must preserve. Every
// method receives the live *gstate.GameState — the engine itself owns
// snapshotting `before` and diffing `after`.
type Transition interface {
	PreValidate(s *gstate.GameState, env oracle.Env, a Action) error
	Apply(s *gstate.GameState, env oracle.Env, a Action) error
	PostValidate(s *gstate.GameState, env oracle.Env, a Action) error
}

// transitions is the closed ActionKind -> Transition dispatch table: a
// flat table, never a class hierarchy.
func transitions() map[gstate.ActionKind]Transition {
	return map[gstate.ActionKind]Transition{
		gstate.ActionMove:        moveTransition{},
		gstate.ActionAttack:      attackTransition{},
		gstate.ActionUseItem:     useItemTransition{},
		gstate.ActionInteract:    interactTransition{},
		gstate.ActionWait:        waitTransition{},
		gstate.ActionPrepareTurn: prepareTurnTransition{},
		gstate.ActionActivation:  activationTransition{},
		gstate.ActionActionCost:  actionCostTransition{},
	}
}
