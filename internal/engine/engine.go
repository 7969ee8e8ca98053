package engine

import (
	"log/slog"

	"github.com/ocx/roguevm/internal/engine/hooks"
	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

// maxHookDepth bounds hook-chain recursion. A hook that
// enqueues an action of the same kind it reacts to would otherwise
// recurse forever; 50 is generous headroom over the two-hook chain this
// engine ships with.
const maxHookDepth = 50

// Engine owns the ActionKind dispatch table and the post-execution hook
// chain. It holds no game state itself — every call takes the live
// *gstate.GameState and mutates it in place, per component C2's
// single-mutator contract.
type Engine struct {
	transitions map[gstate.ActionKind]Transition
	chain       *hooks.Chain
}

// NewEngine wires the closed transition table and the default hook chain
// (ActionCost, Activation).
func NewEngine() *Engine {
	return &Engine{
		transitions: transitions(),
		chain:       hooks.NewChain(hooks.ActionCost{}, hooks.Activation{}),
	}
}

// Execute runs the full pipeline for a single top-level action: snapshot,
// dispatch, pre_validate/apply/post_validate, derive the delta, run the
// hook chain (each hook action recursing through Execute), then re-derive
// the final delta against the original snapshot.
func (e *Engine) Execute(state *gstate.GameState, env oracle.Env, a Action) (*gstate.StateDelta, error) {
	return e.execute(state, env, a, 0)
}

func (e *Engine) execute(state *gstate.GameState, env oracle.Env, a Action, depth int) (*gstate.StateDelta, error) {
	if depth > maxHookDepth {
		return nil, errs.New(errs.KindHookChainTooDeep, "hook chain exceeded depth 50")
	}

	transition, ok := e.transitions[a.Kind]
	if !ok {
		return nil, errs.New(errs.KindNotImplemented, "no transition registered for "+string(a.Kind))
	}

	before := state.Clone()

	if err := transition.PreValidate(state, env, a); err != nil {
		return nil, errs.NewPhaseError(errs.PhasePreValidate, err)
	}
	if err := transition.Apply(state, env, a); err != nil {
		return nil, errs.NewPhaseError(errs.PhaseApply, err)
	}
	if err := transition.PostValidate(state, env, a); err != nil {
		return nil, errs.NewPhaseError(errs.PhasePostValidate, err)
	}

	ref := a.Ref()
	initial := gstate.FromStates(ref, before, state)

	ctx := hooks.Context{State: state, Env: env, Delta: initial, SourceAct: ref}
	for _, h := range e.chain.Ordered() {
		if !h.ShouldTrigger(ctx) {
			continue
		}
		specs, err := h.CreateActions(ctx)
		if err != nil {
			if abort := e.handleHookError(h, err); abort != nil {
				return nil, abort
			}
			continue
		}
		for _, spec := range specs {
			if _, err := e.execute(state, env, actionFromSpec(spec), depth+1); err != nil {
				if abort := e.handleHookError(h, err); abort != nil {
					return nil, abort
				}
			}
		}
	}

	return gstate.FromStates(ref, before, state), nil
}

// handleHookError applies the hook's declared Criticality: Critical
// aborts Execute, Important logs a warning and the chain continues,
// Optional is debug-logged only.
func (e *Engine) handleHookError(h hooks.Hook, err error) error {
	switch h.Criticality() {
	case hooks.Critical:
		return err
	case hooks.Important:
		slog.Warn("hook failed", "hook", h.Name(), "error", err)
		return nil
	default:
		slog.Debug("optional hook failed", "hook", h.Name(), "error", err)
		return nil
	}
}

func actionFromSpec(s hooks.ActionSpec) Action {
	return Action{
		Actor: s.Actor,
		Kind:  s.Kind,
		Input: Input{
			Direction: s.Direction,
			Target:    s.Target,
			ItemID:    s.ItemID,
			Tile:      s.Tile,
			Cost:      s.Cost,
		},
	}
}
