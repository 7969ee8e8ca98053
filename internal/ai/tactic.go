package ai

import (
	"github.com/ocx/roguevm/internal/gstate"
)

// Tactic is the middle layer: a concrete approach to pursuing an Intent.
// Tactics are grouped by the Intent that can select them; tacticsFor is
// the closed dispatch table.
type Tactic int

const (
	TacticAttackNearest Tactic = iota
	TacticAttackWeakest
	TacticAttackLowestHP
	TacticRetreatAndAttack

	TacticFlee
	TacticUseHealItem
	TacticRetreat
	TacticBarricade

	TacticMoveToUnexplored
	TacticMoveRandom
	TacticMoveTowardFrontier

	TacticFollow
	TacticWaitSocially

	TacticPickupNearestItem
	TacticUseItem
	TacticEquipBestItem

	TacticWait
)

func tacticsFor(intent Intent) []Tactic {
	switch intent {
	case IntentCombat:
		return []Tactic{TacticAttackNearest, TacticAttackWeakest, TacticAttackLowestHP, TacticRetreatAndAttack}
	case IntentSurvival:
		return []Tactic{TacticFlee, TacticUseHealItem, TacticRetreat, TacticBarricade}
	case IntentExploration:
		return []Tactic{TacticMoveToUnexplored, TacticMoveRandom, TacticMoveTowardFrontier}
	case IntentSocial:
		return []Tactic{TacticFollow, TacticWaitSocially}
	case IntentResource:
		return []Tactic{TacticPickupNearestItem, TacticUseItem, TacticEquipBestItem}
	default:
		return []Tactic{TacticWait}
	}
}

// scoreTactic evaluates one tactic for self, independent of which target
// or direction it will eventually resolve to. Tactics whose precondition
// fails outright (no action of that shape in self.Actions, no living
// enemy at all) report IsPossible: false so the action layer falls
// through to the next highest-scoring tactic, and ultimately to Wait.
// Per-candidate scoring (which enemy, which direction) happens later in
// scoreAction against the actions enumerateAvailableActions cached for
// this Decide call.
func scoreTactic(t Tactic, s *gstate.GameState, self *gstate.ActorState) Score {
	switch t {
	case TacticAttackNearest, TacticAttackLowestHP, TacticRetreatAndAttack:
		enemy := nearestEnemy(s, self)
		return enemyTacticScore(self, enemy, trait(self.TraitProfile, TraitAggression))
	case TacticAttackWeakest:
		enemy := weakestEnemy(s, self)
		return enemyTacticScore(self, enemy, trait(self.TraitProfile, TraitAggression))

	case TacticFlee, TacticRetreat:
		if !canAct(self, gstate.ActionMove) {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 1.0 - hpRatio(self), Personality: trait(self.TraitProfile, TraitCaution)}
	case TacticUseHealItem:
		if !hasHealItem(self) || !canAct(self, gstate.ActionUseItem) {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 1.0 - hpRatio(self), Personality: trait(self.TraitProfile, TraitDiscipline)}
	case TacticBarricade:
		if !canAct(self, gstate.ActionInteract) {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 1.0 - hpRatio(self), Personality: trait(self.TraitProfile, TraitCaution) * 0.5}

	case TacticMoveToUnexplored, TacticMoveRandom, TacticMoveTowardFrontier:
		if !canAct(self, gstate.ActionMove) {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 0.5, Personality: trait(self.TraitProfile, TraitCuriosity)}

	case TacticFollow:
		if !canAct(self, gstate.ActionMove) || allyCount(s, self) == 0 {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 0.4, Personality: trait(self.TraitProfile, TraitSociability)}
	case TacticWaitSocially:
		return Score{IsPossible: true, Situation: 0.3, Personality: trait(self.TraitProfile, TraitSociability) * 0.5}

	case TacticPickupNearestItem:
		item := nearestItem(s, self)
		if item == nil || self.Position == nil || item.Position.Manhattan(*self.Position) > 0 {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 0.8, Personality: trait(self.TraitProfile, TraitGreed)}
	case TacticUseItem:
		if !hasHealItem(self) || !canAct(self, gstate.ActionUseItem) {
			return Score{IsPossible: false}
		}
		return Score{IsPossible: true, Situation: 0.3, Personality: trait(self.TraitProfile, TraitGreed)}
	case TacticEquipBestItem:
		return Score{IsPossible: false} // equipment resolution is out of scope for NPC AI; only players equip deliberately.

	default:
		return Score{IsPossible: true, Situation: 0.05, Personality: 1.0}
	}
}

func enemyTacticScore(self *gstate.ActorState, enemy *gstate.ActorState, personality float64) Score {
	if enemy == nil || self.Position == nil || enemy.Position == nil || !canAct(self, gstate.ActionAttack) {
		return Score{IsPossible: false}
	}
	dist := self.Position.Manhattan(*enemy.Position)
	return Score{IsPossible: true, Situation: clamp01(1.0 - float64(dist)/20.0), Personality: personality}
}

func deterministicDirectionRoll(actor, salt gstate.EntityID) gstate.Direction {
	x := uint64(actor)*0x9E3779B97F4A7C15 ^ uint64(salt)*0xBF58476D1CE4E5B9
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	x ^= x >> 31
	return allDirections[x%8]
}
