// Package ai implements the three-layer utility AI (component C5):
// Intent scorers choose a broad goal, Tactic scorers choose how to
// pursue it, and the action layer resolves a tactic against the actor's
// actually-available actions, falling back to Wait when nothing scores
// above zero. Every scorer is a pure function of (state, env, entity) so
// Decide is fully deterministic given the same inputs.
package ai

import "github.com/ocx/roguevm/internal/gstate"

// Trait indices into gstate.TraitProfile. Only the traits the scorers in
// this package read are named; the remaining slots are reserved for
// traits future scorers may add without resizing the vector.
const (
	TraitAggression = iota
	TraitCaution
	TraitGreed
	TraitCuriosity
	TraitSociability
	TraitDiscipline
	traitReservedStart
)

// layerWeight is the fixed per-layer contribution to a composited trait,
// summing to 16 so integer division by 16 recovers a weighted average on
// the same [0,255] input scale each layer is authored in. Trait profiles
// are always materialized at spawn, never computed lazily.
var layerWeight = [4]uint32{8, 4, 2, 2} // species, archetype, faction, temperament

// Compose derives a spawn-time TraitProfile from the four weighted layers
// an actor's species, archetype, faction, and temperament each
// contribute. Each input layer is itself a 20-slot vector on the
// TraitProfile's own scale; Compose never reads oracle data directly so
// it stays pure.
func Compose(species, archetype, faction, temperament gstate.TraitProfile) gstate.TraitProfile {
	var out gstate.TraitProfile
	for i := 0; i < len(out); i++ {
		sum := uint32(species[i])*layerWeight[0] +
			uint32(archetype[i])*layerWeight[1] +
			uint32(faction[i])*layerWeight[2] +
			uint32(temperament[i])*layerWeight[3]
		v := sum / 16
		if v > 240 {
			v = 240
		}
		out[i] = uint8(v)
	}
	return out
}

func trait(p gstate.TraitProfile, idx int) float64 {
	return float64(p[idx]) / 240.0
}
