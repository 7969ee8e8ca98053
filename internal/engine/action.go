// Package engine implements the deterministic action pipeline (component
// C3): for each Action, look up its ActionProfile, run
// pre_validate -> apply -> post_validate, then run the post-execution hook
// chain. This is the only path that mutates gstate.GameState, and it MUST
// be byte-identical between the local simulator and the zkVM guest.
package engine

import "github.com/ocx/roguevm/internal/gstate"

// Input carries the per-kind targeting payload for an Action. Only the
// field(s) relevant to the action's TargetingMode are populated.
type Input struct {
	Direction *gstate.Direction `json:"direction,omitempty"`
	Target    *gstate.EntityID  `json:"target,omitempty"`
	ItemID    *gstate.EntityID  `json:"item_id,omitempty"`
	Tile      *gstate.Position  `json:"tile,omitempty"`
	// Cost carries a hook-precomputed Tick for system ActionCost actions —
	// the hook that creates it has already resolved the source action's
	// oracle profile and the actor's speed domain, so the transition only
	// has to apply it.
	Cost *gstate.Tick `json:"cost,omitempty"`
}

// Action is a player or AI intent plus metadata — the only legal input to
// the engine (GLOSSARY).
type Action struct {
	Actor gstate.EntityID   `json:"actor"`
	Kind  gstate.ActionKind `json:"kind"`
	Input Input             `json:"input"`
}

// Ref reduces an Action to the acyclic gstate.ActionRef carried inside a
// StateDelta.
func (a Action) Ref() gstate.ActionRef {
	return gstate.ActionRef{Kind: a.Kind, Actor: a.Actor}
}
