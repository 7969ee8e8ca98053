// Package scheduler implements the turn scheduler (component C4): the
// thin orchestration layer that drives the engine's system actions
// (PrepareTurn, Activation) and exposes the active-actor set to callers
// that need to add or remove an entity outside the normal activation
// radius flow (e.g. spawning a scripted encounter).
package scheduler

import (
	"github.com/ocx/roguevm/internal/engine"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

// Scheduler wraps an *engine.Engine with the two system actions that
// drive turn order.
type Scheduler struct {
	engine *engine.Engine
}

// New builds a Scheduler over the given engine.
func New(e *engine.Engine) *Scheduler {
	return &Scheduler{engine: e}
}

// PrepareNextTurn selects the next actor to act by (ready_at, id)
// tie-break and advances the clock to that actor's ready_at.
// Returns errs.KindNoActiveEntities if the active set is empty or every
// active entity is dead.
func (s *Scheduler) PrepareNextTurn(state *gstate.GameState, env oracle.Env) (*gstate.StateDelta, error) {
	return s.engine.Execute(state, env, engine.Action{Actor: gstate.SystemID, Kind: gstate.ActionPrepareTurn})
}

// RunActivation recomputes the active-actor set from the player's
// activation radius. Called directly by callers that move the player
// without going through the engine's Move transition (e.g. session
// warm-start); after every player move the Activation hook issues the
// same system action through the engine itself.
func (s *Scheduler) RunActivation(state *gstate.GameState, env oracle.Env) (*gstate.StateDelta, error) {
	return s.engine.Execute(state, env, engine.Action{Actor: gstate.SystemID, Kind: gstate.ActionActivation})
}

// Activate force-adds id to the active set, bypassing the radius check.
// Used when spawning a scripted encounter that should act immediately.
func (s *Scheduler) Activate(state *gstate.GameState, id gstate.EntityID) {
	state.Turn.Activate(id)
}

// Deactivate force-removes id from the active set.
func (s *Scheduler) Deactivate(state *gstate.GameState, id gstate.EntityID) {
	state.Turn.Deactivate(id)
}

// Active reports whether id is currently eligible to be scheduled.
func (s *Scheduler) Active(state *gstate.GameState, id gstate.EntityID) bool {
	return state.Turn.IsActive(id)
}
