package ai

import (
	"github.com/ocx/roguevm/internal/engine"
	"github.com/ocx/roguevm/internal/gstate"
)

// AvailableAction is one concrete, legally-targetable action instance: an
// ability self can currently perform paired with one of its legal
// targeting inputs. enumerateAvailableActions builds the full cross
// product of self.Actions x legal targets once per Decide call; every
// tactic then scores candidates drawn from this same cached list rather
// than resolving a single hardcoded action of its own.
type AvailableAction struct {
	Kind      gstate.ActionKind
	Target    *gstate.EntityID
	Direction *gstate.Direction
	ItemID    *gstate.EntityID
}

func (a AvailableAction) toEngineAction(actor gstate.EntityID) engine.Action {
	return engine.Action{
		Actor: actor,
		Kind:  a.Kind,
		Input: engine.Input{Target: a.Target, Direction: a.Direction, ItemID: a.ItemID},
	}
}

var allDirections = [8]gstate.Direction{
	gstate.North, gstate.South, gstate.East, gstate.West,
	gstate.NorthEast, gstate.NorthWest, gstate.SouthEast, gstate.SouthWest,
}

const interactReach = int32(1)

// enumerateAvailableActions builds self's full candidate-action list:
// every ability in self.Actions crossed with its legal targets (living
// enemies for Attack, the 8 directions for Move, held stacks for
// UseItem, adjacent props/items for Interact). Wait is always included
// as the universal fallback candidate.
func enumerateAvailableActions(s *gstate.GameState, self *gstate.ActorState) []AvailableAction {
	var out []AvailableAction
	for _, kind := range self.Actions {
		switch kind {
		case gstate.ActionAttack:
			for _, enemy := range livingEnemies(s, self) {
				id := enemy.ID
				out = append(out, AvailableAction{Kind: gstate.ActionAttack, Target: &id})
			}
		case gstate.ActionMove:
			for i := range allDirections {
				d := allDirections[i]
				out = append(out, AvailableAction{Kind: gstate.ActionMove, Direction: &d})
			}
		case gstate.ActionUseItem:
			for _, slot := range self.Inventory {
				if slot.Quantity == 0 {
					continue
				}
				id := slot.ItemID
				out = append(out, AvailableAction{Kind: gstate.ActionUseItem, ItemID: &id})
			}
		case gstate.ActionInteract:
			for _, id := range adjacentInteractables(s, self) {
				target := id
				out = append(out, AvailableAction{Kind: gstate.ActionInteract, Target: &target})
			}
		}
	}
	out = append(out, AvailableAction{Kind: gstate.ActionWait})
	return out
}

// livingEnemies returns every living actor outside self's faction,
// ordered player-then-NPCs-by-index for a deterministic enumeration
// order (tie-breaks in rankIndices then always resolve identically).
func livingEnemies(s *gstate.GameState, self *gstate.ActorState) []*gstate.ActorState {
	var out []*gstate.ActorState
	consider := func(a *gstate.ActorState) {
		if a == nil || a.ID == self.ID || !a.Alive() || a.Faction == self.Faction {
			return
		}
		out = append(out, a)
	}
	consider(s.Entities.Player)
	for i := range s.Entities.NPCs {
		consider(&s.Entities.NPCs[i])
	}
	return out
}

// adjacentInteractables returns the ids of every prop or ground item
// within Chebyshev interact range of self.
func adjacentInteractables(s *gstate.GameState, self *gstate.ActorState) []gstate.EntityID {
	if self.Position == nil {
		return nil
	}
	var out []gstate.EntityID
	for i := range s.Entities.Props {
		p := &s.Entities.Props[i]
		if p.Position.Chebyshev(*self.Position) <= interactReach {
			out = append(out, p.ID)
		}
	}
	for i := range s.Entities.Items {
		it := &s.Entities.Items[i]
		if it.Position != nil && it.Position.Chebyshev(*self.Position) <= interactReach {
			out = append(out, it.ID)
		}
	}
	return out
}

// scoreAction evaluates one available-action candidate against the
// winning tactic. Tactics that don't touch a given action kind score it
// IsPossible:false, so argmax in resolveAvailableAction naturally only
// compares action instances the tactic actually endorses.
func scoreAction(t Tactic, a AvailableAction, s *gstate.GameState, self *gstate.ActorState) Score {
	switch t {
	case TacticAttackNearest, TacticRetreatAndAttack:
		return scoreAttackCandidate(a, s, self, func(enemy *gstate.ActorState, dist int32) float64 {
			return clamp01(1.0 - float64(dist)/20.0)
		})
	case TacticAttackWeakest, TacticAttackLowestHP:
		return scoreAttackCandidate(a, s, self, func(enemy *gstate.ActorState, dist int32) float64 {
			return 1.0 - hpRatio(enemy)
		})

	case TacticFlee, TacticRetreat:
		if a.Kind != gstate.ActionMove || self.Position == nil {
			return Score{IsPossible: false}
		}
		enemy := nearestEnemy(s, self)
		dist := moveResultDistanceToNearestEnemy(a, self, enemy)
		return Score{IsPossible: true, Situation: clamp01(float64(dist) / 20.0), Personality: trait(self.TraitProfile, TraitCaution)}
	case TacticBarricade:
		if a.Kind != gstate.ActionInteract {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 1.0 - hpRatio(self), Personality: trait(self.TraitProfile, TraitCaution) * 0.5}

	case TacticMoveToUnexplored, TacticMoveTowardFrontier:
		return scoreWanderCandidate(a, self, 2)
	case TacticMoveRandom:
		return scoreWanderCandidate(a, self, 1)

	case TacticFollow:
		if a.Kind != gstate.ActionMove || self.Position == nil {
			return Score{IsPossible: false}
		}
		ally := nearestAlly(s, self)
		if ally == nil {
			return Score{IsPossible: false}
		}
		dist := moveResultDistance(a, self, *ally.Position)
		return Score{IsPossible: true, Situation: clamp01(1.0 - float64(dist)/20.0), Personality: trait(self.TraitProfile, TraitSociability)}
	case TacticWaitSocially:
		if a.Kind != gstate.ActionWait {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 0.3, Personality: trait(self.TraitProfile, TraitSociability) * 0.5}

	case TacticPickupNearestItem:
		if a.Kind != gstate.ActionInteract || a.Target == nil {
			return Score{IsPossible: false}
		}
		item := s.Entities.FindItem(*a.Target)
		if item == nil {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 0.8, Personality: trait(self.TraitProfile, TraitGreed)}
	case TacticUseHealItem, TacticUseItem:
		if a.Kind != gstate.ActionUseItem {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 1.0 - hpRatio(self), Personality: trait(self.TraitProfile, TraitDiscipline)}
	case TacticEquipBestItem:
		return Score{IsPossible: false} // equipment resolution is out of scope for NPC AI; only players equip deliberately.

	default:
		if a.Kind != gstate.ActionWait {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 0.05, Personality: 1.0}
	}
}

func scoreAttackCandidate(a AvailableAction, s *gstate.GameState, self *gstate.ActorState, weigh func(enemy *gstate.ActorState, dist int32) float64) Score {
	if a.Kind != gstate.ActionAttack || a.Target == nil || self.Position == nil {
		return Score{IsPossible: false}
	}
	enemy := s.Entities.FindActor(*a.Target)
	if enemy == nil || enemy.Position == nil || !enemy.Alive() {
		return Score{IsPossible: false}
	}
	dist := self.Position.Manhattan(*enemy.Position)
	return Score{IsPossible: true, Situation: clamp01(weigh(enemy, dist)), Personality: trait(self.TraitProfile, TraitAggression)}
}

// scoreWanderCandidate endorses exactly the direction a tactic's
// deterministic seed-derived roll selects, so ties between directions
// never depend on map iteration order.
func scoreWanderCandidate(a AvailableAction, self *gstate.ActorState, salt gstate.EntityID) Score {
	if a.Kind != gstate.ActionMove || a.Direction == nil {
		return Score{IsPossible: false}
	}
	roll := deterministicDirectionRoll(self.ID, salt)
	if *a.Direction != roll {
		return Score{IsPossible: true, Situation: 0, Personality: trait(self.TraitProfile, TraitCuriosity)}
	}
	return Score{IsPossible: true, Situation: 1.0, Personality: trait(self.TraitProfile, TraitCuriosity)}
}

func moveResultDistance(a AvailableAction, self *gstate.ActorState, to gstate.Position) int32 {
	dx, dy := a.Direction.Delta()
	next := gstate.Position{X: self.Position.X + dx, Y: self.Position.Y + dy}
	return next.Manhattan(to)
}

func moveResultDistanceToNearestEnemy(a AvailableAction, self *gstate.ActorState, enemy *gstate.ActorState) int32 {
	if a.Direction == nil {
		return 0
	}
	dx, dy := a.Direction.Delta()
	next := gstate.Position{X: self.Position.X + dx, Y: self.Position.Y + dy}
	if enemy == nil || enemy.Position == nil {
		return 0
	}
	return next.Manhattan(*enemy.Position)
}

func nearestAlly(s *gstate.GameState, self *gstate.ActorState) *gstate.ActorState {
	var nearest *gstate.ActorState
	var nearestDist int32
	consider := func(a *gstate.ActorState) {
		if a == nil || a.ID == self.ID || !a.Alive() || a.Faction != self.Faction || a.Position == nil || self.Position == nil {
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

// resolveAvailableAction scores every candidate in available against t
// and returns the argmax, or ok == false if nothing scored above zero.
func resolveAvailableAction(t Tactic, available []AvailableAction, s *gstate.GameState, self *gstate.ActorState) (AvailableAction, bool) {
	bestIdx := -1
	var bestTotal float64
	for i, a := range available {
		sc := scoreAction(t, a, s, self)
		total := sc.Total()
		if total <= 0 {
			continue
		}
		if bestIdx == -1 || total > bestTotal {
			bestIdx, bestTotal = i, total
		}
	}
	if bestIdx == -1 {
		return AvailableAction{}, false
	}
	return available[bestIdx], true
}
