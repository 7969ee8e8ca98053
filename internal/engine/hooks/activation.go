package hooks

import "github.com/ocx/roguevm/internal/gstate"

// Activation fires after any action that can change the player's
// position (Move) and re-triggers the Activation system transition to
// recompute which NPCs are within the activation radius.
type Activation struct{}

func (Activation) Name() string            { return "activation" }
func (Activation) Priority() int           { return 10 }
func (Activation) Criticality() Criticality { return Important }

func (Activation) ShouldTrigger(ctx Context) bool {
	return ctx.SourceAct.Kind == gstate.ActionMove && ctx.SourceAct.Actor == gstate.PlayerID
}

func (Activation) CreateActions(ctx Context) ([]ActionSpec, error) {
	return []ActionSpec{{Actor: gstate.SystemID, Kind: gstate.ActionActivation}}, nil
}
