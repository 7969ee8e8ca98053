package gstate

import "bytes"

// ActionRef is the minimal, acyclic reference to the action that produced a
// StateDelta: enough to correlate the delta with its action-log entry
// without gstate importing the engine package (which itself imports
// gstate). The full Action payload lives alongside the delta in the
// persistence layer's ActionLogEntry.
type ActionRef struct {
	Kind  ActionKind `json:"kind"`
	Actor EntityID   `json:"actor"`
}

// TurnPatch captures only the turn fields that actually changed.
type TurnPatch struct {
	ClockBefore        *Tick      `json:"clock_before,omitempty"`
	ClockAfter         *Tick      `json:"clock_after,omitempty"`
	NonceBefore        *Nonce     `json:"nonce_before,omitempty"`
	NonceAfter         *Nonce     `json:"nonce_after,omitempty"`
	CurrentActorBefore *EntityID  `json:"current_actor_before,omitempty"`
	CurrentActorAfter  *EntityID  `json:"current_actor_after,omitempty"`
	Activated          []EntityID `json:"activated,omitempty"`
	Deactivated        []EntityID `json:"deactivated,omitempty"`
}

func (p TurnPatch) isEmpty() bool {
	return p.ClockAfter == nil && p.NonceAfter == nil && p.CurrentActorAfter == nil &&
		len(p.Activated) == 0 && len(p.Deactivated) == 0
}

// ActorPatch is a minimal entity-level patch: present only when the actor
// with ID differs between before and after. Before/After are full
// snapshots rather than per-field diffs — apply_delta becomes a plain
// replace, and every consumer that previously wanted per-field detail
// (e.g. "what changed about HP") already receives full before/after
// ActorState snapshots via the ActionExecuted event, so a
// second, redundant per-field encoding inside the delta buys nothing.
type ActorPatch struct {
	ID     EntityID    `json:"id"`
	Before *ActorState `json:"before,omitempty"`
	After  *ActorState `json:"after,omitempty"`
}

// PropPatch and ItemPatch follow the same before/after-pair shape.
type PropPatch struct {
	ID     EntityID   `json:"id"`
	Before *PropState `json:"before,omitempty"`
	After  *PropState `json:"after,omitempty"`
}

type ItemPatch struct {
	ID     EntityID   `json:"id"`
	Before *ItemState `json:"before,omitempty"`
	After  *ItemState `json:"after,omitempty"`
}

// EntitiesPatch groups every changed entity.
type EntitiesPatch struct {
	Player *ActorPatch  `json:"player,omitempty"`
	Actors []ActorPatch `json:"actors,omitempty"`
	Props  []PropPatch  `json:"props,omitempty"`
	Items  []ItemPatch  `json:"items,omitempty"`
}

// OccupancyPatch records a tile whose occupant list changed.
type OccupancyPatch struct {
	Position Position   `json:"position"`
	Before   []EntityID `json:"before,omitempty"`
	After    []EntityID `json:"after,omitempty"`
}

// WorldPatch groups every changed tile.
type WorldPatch struct {
	Occupancy []OccupancyPatch `json:"occupancy,omitempty"`
}

// StateDelta is the minimal patch describing the difference between two
// successive states. A Wait action with no hook side effects
// produces a delta containing only a (possibly trivial) TurnPatch.
type StateDelta struct {
	Action        ActionRef     `json:"action"`
	TurnPatch     TurnPatch     `json:"turn_patch"`
	EntitiesPatch EntitiesPatch `json:"entities_patch"`
	WorldPatch    WorldPatch    `json:"world_patch"`
}

// FromStates diffs before and after field-by-field and records the
// minimal patch. It runs on the host only — the zkVM guest re-derives
// new_state_root from scratch and never computes a delta.
func FromStates(action ActionRef, before, after *GameState) *StateDelta {
	d := &StateDelta{Action: action}
	d.TurnPatch = diffTurn(before.Turn, after.Turn)
	d.EntitiesPatch = diffEntities(before.Entities, after.Entities)
	d.WorldPatch = diffWorld(before.World, after.World)
	return d
}

func diffTurn(before, after Turn) TurnPatch {
	var p TurnPatch
	if before.Clock != after.Clock {
		b, a := before.Clock, after.Clock
		p.ClockBefore, p.ClockAfter = &b, &a
	}
	if before.Nonce != after.Nonce {
		b, a := before.Nonce, after.Nonce
		p.NonceBefore, p.NonceAfter = &b, &a
	}
	if before.CurrentActor != after.CurrentActor {
		b, a := before.CurrentActor, after.CurrentActor
		p.CurrentActorBefore, p.CurrentActorAfter = &b, &a
	}
	beforeSet := map[EntityID]bool{}
	for _, id := range before.ActiveActors {
		beforeSet[id] = true
	}
	afterSet := map[EntityID]bool{}
	for _, id := range after.ActiveActors {
		afterSet[id] = true
	}
	for _, id := range after.ActiveActors {
		if !beforeSet[id] {
			p.Activated = append(p.Activated, id)
		}
	}
	for _, id := range before.ActiveActors {
		if !afterSet[id] {
			p.Deactivated = append(p.Deactivated, id)
		}
	}
	return p
}

func actorEqual(a, b *ActorState) bool {
	if a == nil || b == nil {
		return a == b
	}
	w1, w2 := newCanonicalWriter(), newCanonicalWriter()
	w1.actor(*a)
	w2.actor(*b)
	return bytes.Equal(w1.bytes(), w2.bytes())
}

func propEqual(a, b *PropState) bool {
	if a == nil || b == nil {
		return a == b
	}
	w1, w2 := newCanonicalWriter(), newCanonicalWriter()
	w1.prop(*a)
	w2.prop(*b)
	return bytes.Equal(w1.bytes(), w2.bytes())
}

func itemEqual(a, b *ItemState) bool {
	if a == nil || b == nil {
		return a == b
	}
	w1, w2 := newCanonicalWriter(), newCanonicalWriter()
	w1.item(*a)
	w2.item(*b)
	return bytes.Equal(w1.bytes(), w2.bytes())
}

func diffEntities(before, after Entities) EntitiesPatch {
	var p EntitiesPatch
	if !actorEqual(before.Player, after.Player) {
		p.Player = &ActorPatch{ID: PlayerID, Before: before.Player.Clone(), After: after.Player.Clone()}
	}

	beforeNPCs := map[EntityID]*ActorState{}
	for i := range before.NPCs {
		beforeNPCs[before.NPCs[i].ID] = &before.NPCs[i]
	}
	afterNPCs := map[EntityID]*ActorState{}
	for i := range after.NPCs {
		afterNPCs[after.NPCs[i].ID] = &after.NPCs[i]
	}
	for id, a := range afterNPCs {
		b := beforeNPCs[id]
		if !actorEqual(b, a) {
			p.Actors = append(p.Actors, ActorPatch{ID: id, Before: b.Clone(), After: a.Clone()})
		}
	}
	for id, b := range beforeNPCs {
		if _, ok := afterNPCs[id]; !ok {
			p.Actors = append(p.Actors, ActorPatch{ID: id, Before: b.Clone(), After: nil})
		}
	}

	beforeProps := map[EntityID]*PropState{}
	for i := range before.Props {
		beforeProps[before.Props[i].ID] = &before.Props[i]
	}
	afterProps := map[EntityID]*PropState{}
	for i := range after.Props {
		afterProps[after.Props[i].ID] = &after.Props[i]
	}
	for id, a := range afterProps {
		b := beforeProps[id]
		if !propEqual(b, a) {
			p.Props = append(p.Props, PropPatch{ID: id, Before: b.Clone(), After: a.Clone()})
		}
	}
	for id, b := range beforeProps {
		if _, ok := afterProps[id]; !ok {
			p.Props = append(p.Props, PropPatch{ID: id, Before: b.Clone(), After: nil})
		}
	}

	beforeItems := map[EntityID]*ItemState{}
	for i := range before.Items {
		beforeItems[before.Items[i].ID] = &before.Items[i]
	}
	afterItems := map[EntityID]*ItemState{}
	for i := range after.Items {
		afterItems[after.Items[i].ID] = &after.Items[i]
	}
	for id, a := range afterItems {
		b := beforeItems[id]
		if !itemEqual(b, a) {
			p.Items = append(p.Items, ItemPatch{ID: id, Before: b.Clone(), After: a.Clone()})
		}
	}
	for id, b := range beforeItems {
		if _, ok := afterItems[id]; !ok {
			p.Items = append(p.Items, ItemPatch{ID: id, Before: b.Clone(), After: nil})
		}
	}
	return p
}

func slicesEqualIDs(a, b []EntityID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func diffWorld(before, after World) WorldPatch {
	var p WorldPatch
	seen := map[Position]bool{}
	for pos, ids := range after.Occupants {
		seen[pos] = true
		if !slicesEqualIDs(before.Occupants[pos], ids) {
			p.Occupancy = append(p.Occupancy, OccupancyPatch{
				Position: pos,
				Before:   append([]EntityID(nil), before.Occupants[pos]...),
				After:    append([]EntityID(nil), ids...),
			})
		}
	}
	for pos, ids := range before.Occupants {
		if seen[pos] {
			continue
		}
		p.Occupancy = append(p.Occupancy, OccupancyPatch{
			Position: pos,
			Before:   append([]EntityID(nil), ids...),
			After:    nil,
		})
	}
	return p
}

// Apply reconstructs `after` by applying delta to a fresh clone of `before`.
// It is the reference implementation backing the round-trip invariant
// apply_delta(before, delta) == after.
func Apply(before *GameState, delta *StateDelta) *GameState {
	s := before.Clone()

	if delta.TurnPatch.ClockAfter != nil {
		s.Turn.Clock = *delta.TurnPatch.ClockAfter
	}
	if delta.TurnPatch.NonceAfter != nil {
		s.Turn.Nonce = *delta.TurnPatch.NonceAfter
	}
	if delta.TurnPatch.CurrentActorAfter != nil {
		s.Turn.CurrentActor = *delta.TurnPatch.CurrentActorAfter
	}
	for _, id := range delta.TurnPatch.Activated {
		s.Turn.Activate(id)
	}
	for _, id := range delta.TurnPatch.Deactivated {
		s.Turn.Deactivate(id)
	}

	if delta.EntitiesPatch.Player != nil {
		s.Entities.Player = delta.EntitiesPatch.Player.After.Clone()
	}
	for _, ap := range delta.EntitiesPatch.Actors {
		applyActorPatch(&s.Entities.NPCs, ap)
	}
	for _, pp := range delta.EntitiesPatch.Props {
		applyPropPatch(&s.Entities.Props, pp)
	}
	for _, ip := range delta.EntitiesPatch.Items {
		applyItemPatch(&s.Entities.Items, ip)
	}

	for _, op := range delta.WorldPatch.Occupancy {
		if len(op.After) == 0 {
			delete(s.World.Occupants, op.Position)
		} else {
			s.World.Occupants[op.Position] = append([]EntityID(nil), op.After...)
		}
	}

	return s
}

func applyActorPatch(list *[]ActorState, p ActorPatch) {
	for i := range *list {
		if (*list)[i].ID == p.ID {
			if p.After == nil {
				*list = append((*list)[:i], (*list)[i+1:]...)
			} else {
				(*list)[i] = *p.After.Clone()
			}
			return
		}
	}
	if p.After != nil {
		*list = append(*list, *p.After.Clone())
	}
}

func applyPropPatch(list *[]PropState, p PropPatch) {
	for i := range *list {
		if (*list)[i].ID == p.ID {
			if p.After == nil {
				*list = append((*list)[:i], (*list)[i+1:]...)
			} else {
				(*list)[i] = *p.After.Clone()
			}
			return
		}
	}
	if p.After != nil {
		*list = append(*list, *p.After.Clone())
	}
}

func applyItemPatch(list *[]ItemState, p ItemPatch) {
	for i := range *list {
		if (*list)[i].ID == p.ID {
			if p.After == nil {
				*list = append((*list)[:i], (*list)[i+1:]...)
			} else {
				(*list)[i] = *p.After.Clone()
			}
			return
		}
	}
	if p.After != nil {
		*list = append(*list, *p.After.Clone())
	}
}

// IsEmpty reports whether the delta has no effect at all (a pure Wait
// with no hook side effects).
func (d *StateDelta) IsEmpty() bool {
	return d.TurnPatch.isEmpty() &&
		d.EntitiesPatch.Player == nil && len(d.EntitiesPatch.Actors) == 0 &&
		len(d.EntitiesPatch.Props) == 0 && len(d.EntitiesPatch.Items) == 0 &&
		len(d.WorldPatch.Occupancy) == 0
}
