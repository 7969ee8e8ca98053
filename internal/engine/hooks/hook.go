// Package hooks implements the post-execution hook chain:
// after an action's apply/post_validate phases succeed, every registered
// hook whose ShouldTrigger fires gets a chance to enqueue follow-up
// actions (ActionCost, Activation, and any future system reaction). Hooks
// depend only on gstate/oracle, never on the engine package itself, so
// the engine can own the recursive chain-execution loop without an
// import cycle.
package hooks

import (
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

// Criticality controls how the chain runner reacts to a hook's own error.
type Criticality uint8

const (
	// Critical hook failures abort the whole Execute call.
	Critical Criticality = iota
	// Important hook failures are logged and the chain continues.
	Important
	// Optional hook failures are debug-logged only.
	Optional
)

// ActionSpec is the acyclic stand-in for engine.Action a hook can
// construct without importing the engine package. The engine converts
// each ActionSpec it receives back into a concrete Action before
// recursively executing it.
type ActionSpec struct {
	Actor     gstate.EntityID
	Kind      gstate.ActionKind
	Direction *gstate.Direction
	Target    *gstate.EntityID
	ItemID    *gstate.EntityID
	Tile      *gstate.Position
	Cost      *gstate.Tick
}

// Context is the read-only view a hook inspects to decide whether and
// what to trigger. Delta is the StateDelta produced by the action whose
// post-execution chain is currently running.
type Context struct {
	State     *gstate.GameState
	Env       oracle.Env
	Delta     *gstate.StateDelta
	SourceAct gstate.ActionRef
}

// Hook is one post-execution reaction.
type Hook interface {
	Name() string
	Priority() int
	Criticality() Criticality
	ShouldTrigger(ctx Context) bool
	CreateActions(ctx Context) ([]ActionSpec, error)
}

// Chain is an ordered, named hook registry.
type Chain struct {
	ordered []Hook
}

// NewChain builds a Chain from hooks, sorted by ascending Priority with
// registration order as the tie-break (a stable sort).
func NewChain(hs ...Hook) *Chain {
	ordered := append([]Hook(nil), hs...)
	for i := 1; i < len(ordered); i++ {
		j := i
		for j > 0 && ordered[j].Priority() < ordered[j-1].Priority() {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
			j--
		}
	}
	return &Chain{ordered: ordered}
}

// Ordered returns the hooks in the fixed evaluation order.
func (c *Chain) Ordered() []Hook { return c.ordered }
