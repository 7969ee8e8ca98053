package ai

import (
	"github.com/ocx/roguevm/internal/engine"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

// Decide runs the full three-layer pipeline for a single NPC: score every
// Intent, score every Tactic under the winning Intent, then score self's
// available actions (abilities x legal targets, enumerated once for this
// call) against the winning tactic and take the argmax. A Wait is always
// returned as the last resort, so Decide never fails to produce an
// action for a living, active entity.
func Decide(state *gstate.GameState, env oracle.Env, entity gstate.EntityID) engine.Action {
	self := state.Entities.FindActor(entity)
	if self == nil || !self.Alive() {
		return engine.Action{Actor: entity, Kind: gstate.ActionWait}
	}

	available := enumerateAvailableActions(state, self)

	intentScores := make([]Score, len(allIntents))
	for i, intent := range allIntents {
		intentScores[i] = scoreIntent(intent, state, env, self)
	}

	order := rankIndices(intentScores)
	for _, idx := range order {
		if !intentScores[idx].IsPossible {
			continue
		}
		intent := allIntents[idx]
		if action, ok := decideTactic(intent, state, self, available); ok {
			return action
		}
	}
	return engine.Action{Actor: self.ID, Kind: gstate.ActionWait}
}

func decideTactic(intent Intent, state *gstate.GameState, self *gstate.ActorState, available []AvailableAction) (engine.Action, bool) {
	tactics := tacticsFor(intent)
	scores := make([]Score, len(tactics))
	for i, t := range tactics {
		scores[i] = scoreTactic(t, state, self)
	}
	for _, idx := range rankIndices(scores) {
		if !scores[idx].IsPossible {
			continue
		}
		if action, ok := resolveAvailableAction(tactics[idx], available, state, self); ok {
			return action.toEngineAction(self.ID), true
		}
	}
	return engine.Action{}, false
}

// rankIndices returns indices into scores sorted by descending Total,
// with index order as the tie-break (a stable sort), so equal-utility
// options always resolve identically between host and guest.
func rankIndices(scores []Score) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	for i := 1; i < len(idx); i++ {
		j := i
		for j > 0 && scores[idx[j]].Total() > scores[idx[j-1]].Total() {
			idx[j], idx[j-1] = idx[j-1], idx[j]
			j--
		}
	}
	return idx
}
