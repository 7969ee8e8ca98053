package ai

import (
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

// hpRatio returns an actor's current/max HP in [0, 1], or 0 for a dead or
// resourceless actor.
func hpRatio(a *gstate.ActorState) float64 {
	if a == nil || a.Resources.MaxHP <= 0 {
		return 0
	}
	return float64(a.Resources.HP) / float64(a.Resources.MaxHP)
}

// inLineOfSight approximates line-of-sight as a bounded-range check: the
// oracle bundle carries no occlusion geometry, only tile passability, so
// "visible" degrades to "within twice the
// activation radius" — enough for the scorers in this package to
// distinguish nearby from distant without a raycaster.
func inLineOfSight(env oracle.Env, from, to gstate.Position) bool {
	radius := int32(24)
	if v, err := env.Int("activation_radius"); err == nil {
		radius = int32(v) * 2
	}
	return from.Chebyshev(to) <= radius
}

// nearestEnemy returns the closest living actor whose faction differs
// from self's, or nil.
func nearestEnemy(s *gstate.GameState, self *gstate.ActorState) *gstate.ActorState {
	var nearest *gstate.ActorState
	var nearestDist int32
	consider := func(a *gstate.ActorState) {
		if a == nil || a.ID == self.ID || !a.Alive() || a.Position == nil || self.Position == nil {
			return
		}
		if a.Faction == self.Faction {
			return
		}
		d := self.Position.Manhattan(*a.Position)
		if nearest == nil || d < nearestDist {
			nearest, nearestDist = a, d
		}
	}
	consider(s.Entities.Player)
	for i := range s.Entities.NPCs {
		consider(&s.Entities.NPCs[i])
	}
	return nearest
}

// weakestEnemy returns the living enemy with the lowest current HP.
func weakestEnemy(s *gstate.GameState, self *gstate.ActorState) *gstate.ActorState {
	var weakest *gstate.ActorState
	consider := func(a *gstate.ActorState) {
		if a == nil || a.ID == self.ID || !a.Alive() || a.Faction == self.Faction {
			return
		}
		if weakest == nil || a.Resources.HP < weakest.Resources.HP {
			weakest = a
		}
	}
	consider(s.Entities.Player)
	for i := range s.Entities.NPCs {
		consider(&s.Entities.NPCs[i])
	}
	return weakest
}

// allyCount counts living actors sharing self's faction, excluding self.
func allyCount(s *gstate.GameState, self *gstate.ActorState) int {
	n := 0
	count := func(a *gstate.ActorState) {
		if a != nil && a.ID != self.ID && a.Alive() && a.Faction == self.Faction {
			n++
		}
	}
	count(s.Entities.Player)
	for i := range s.Entities.NPCs {
		count(&s.Entities.NPCs[i])
	}
	return n
}

// enemyCount counts living actors outside self's faction within sight.
func enemyCount(s *gstate.GameState, env oracle.Env, self *gstate.ActorState) int {
	n := 0
	count := func(a *gstate.ActorState) {
		if a == nil || a.ID == self.ID || !a.Alive() || a.Faction == self.Faction {
			return
		}
		if self.Position != nil && a.Position != nil && inLineOfSight(env, *self.Position, *a.Position) {
			n++
		}
	}
	count(s.Entities.Player)
	for i := range s.Entities.NPCs {
		count(&s.Entities.NPCs[i])
	}
	return n
}

// nearestItem returns the closest world-resident item, or nil.
func nearestItem(s *gstate.GameState, self *gstate.ActorState) *gstate.ItemState {
	var nearest *gstate.ItemState
	var nearestDist int32
	for i := range s.Entities.Items {
		it := &s.Entities.Items[i]
		if it.Position == nil || self.Position == nil {
			continue
		}
		d := self.Position.Manhattan(*it.Position)
		if nearest == nil || d < nearestDist {
			nearest, nearestDist = it, d
		}
	}
	return nearest
}

func hasHealItem(a *gstate.ActorState) bool {
	for _, slot := range a.Inventory {
		if slot.Quantity > 0 {
			return true // any held item is treated as a candidate consumable; the
			// UseItem transition's effect chain determines whether it heals.
		}
	}
	return false
}

func canAct(a *gstate.ActorState, kind gstate.ActionKind) bool {
	for _, k := range a.Actions {
		if k == kind {
			return true
		}
	}
	return false
}
