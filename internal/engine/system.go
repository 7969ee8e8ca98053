package engine

import (
	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

// prepareTurnTransition selects the next actor to act by (ready_at, id)
// tie-break and advances the game clock to
// that actor's ready_at.
type prepareTurnTransition struct{}

func (prepareTurnTransition) PreValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	if len(s.Turn.ActiveActors) == 0 {
		return errs.New(errs.KindNoActiveEntities, "no active entities to schedule")
	}
	return nil
}

func (prepareTurnTransition) Apply(s *gstate.GameState, env oracle.Env, a Action) error {
	var winner gstate.EntityID
	var winnerReady gstate.Tick
	found := false
	for _, id := range s.Turn.ActiveActors {
		actor := s.Entities.FindActor(id)
		if actor == nil || !actor.Alive() {
			continue
		}
		ready := gstate.Tick(0)
		if actor.ReadyAt != nil {
			ready = *actor.ReadyAt
		}
		if !found || ready < winnerReady || (ready == winnerReady && id < winner) {
			winner, winnerReady, found = id, ready, true
		}
	}
	if !found {
		return errs.New(errs.KindNoActiveEntities, "no living active entities to schedule")
	}
	s.Turn.CurrentActor = winner
	if winnerReady > s.Turn.Clock {
		s.Turn.Clock = winnerReady
	}
	return nil
}

func (prepareTurnTransition) PostValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	return nil
}

// activationTransition recomputes the active-actor set from the player's
// Chebyshev activation radius. Entities entering range are
// assigned a wakeup delay before they are first eligible to act, scaled by
// their own physical speed domain as the ActionCost hook scales action
// costs; entities leaving range are deactivated and their ready_at is left
// untouched. An entity that re-enters range gets a fresh ready_at of
// clock + wakeup delay.
type activationTransition struct{}

const defaultActivationRadius = 12
const baseWakeupDelay = gstate.Tick(100)

func (activationTransition) PreValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	if s.Entities.Player == nil || s.Entities.Player.Position == nil {
		return errs.New(errs.KindInvalidActor, "player has no position")
	}
	return nil
}

// wakeupDelay scales baseWakeupDelay by the actor's physical speed domain,
// the same 100/domain curve the ActionCost hook uses for action costs:
// a domain of 200 halves the delay, 50 doubles it.
func wakeupDelay(npc *gstate.ActorState, base gstate.Tick) gstate.Tick {
	_, _, speed, _ := npc.Derive()
	domain := speed.Physical
	if domain <= 0 {
		domain = 100
	}
	return gstate.Tick(uint64(base) * 100 / uint64(domain))
}

func (activationTransition) Apply(s *gstate.GameState, env oracle.Env, a Action) error {
	radius := int32(defaultActivationRadius)
	if v, err := env.Int("activation_radius"); err == nil {
		radius = int32(v)
	}
	base := baseWakeupDelay
	if v, err := env.Int("wakeup_delay"); err == nil {
		base = gstate.Tick(v)
	}

	playerPos := *s.Entities.Player.Position
	s.Turn.Activate(gstate.PlayerID)

	for i := range s.Entities.NPCs {
		npc := &s.Entities.NPCs[i]
		if npc.Position == nil || !npc.Alive() {
			continue
		}
		inRange := npc.Position.Chebyshev(playerPos) <= radius
		wasActive := s.Turn.IsActive(npc.ID)
		switch {
		case inRange && !wasActive:
			ready := s.Turn.Clock + wakeupDelay(npc, base)
			npc.ReadyAt = &ready
			s.Turn.Activate(npc.ID)
		case !inRange && wasActive:
			s.Turn.Deactivate(npc.ID)
		}
	}
	return nil
}

func (activationTransition) PostValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	return nil
}

// actionCostTransition advances the acting entity's ready_at by the cost a
// hook already computed.
type actionCostTransition struct{}

func (actionCostTransition) PreValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	if s.Entities.FindActor(a.Actor) == nil {
		return errs.New(errs.KindActorNotFound, "action-cost actor not found")
	}
	if a.Input.Cost == nil {
		return errs.New(errs.KindInvalidTgt, "action-cost requires a precomputed cost")
	}
	return nil
}

func (actionCostTransition) Apply(s *gstate.GameState, env oracle.Env, a Action) error {
	actor := s.Entities.FindActor(a.Actor)
	base := s.Turn.Clock
	if actor.ReadyAt != nil && *actor.ReadyAt > base {
		base = *actor.ReadyAt
	}
	next := base + *a.Input.Cost
	actor.ReadyAt = &next
	return nil
}

func (actionCostTransition) PostValidate(s *gstate.GameState, env oracle.Env, a Action) error {
	return nil
}
