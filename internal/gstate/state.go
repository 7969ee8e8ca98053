package gstate

import "sort"

// Turn is the scheduler-owned slice of GameState: whose turn it is, the
// game clock, the action nonce, and the active-actor set.
type Turn struct {
	CurrentActor  EntityID   `json:"current_actor"`
	Clock         Tick       `json:"clock"`
	Nonce         Nonce      `json:"nonce"`
	ActiveActors  []EntityID `json:"active_actors"` // ordered set; see ActiveActors helpers
}

// Clone deep-copies a Turn.
func (t Turn) Clone() Turn {
	return Turn{
		CurrentActor: t.CurrentActor,
		Clock:        t.Clock,
		Nonce:        t.Nonce,
		ActiveActors: append([]EntityID(nil), t.ActiveActors...),
	}
}

// IsActive reports whether id is a member of the active-actor set.
func (t Turn) IsActive(id EntityID) bool {
	for _, a := range t.ActiveActors {
		if a == id {
			return true
		}
	}
	return false
}

// Activate adds id to the active set if not already present, keeping the
// set sorted by EntityID so iteration order is deterministic.
func (t *Turn) Activate(id EntityID) {
	if t.IsActive(id) {
		return
	}
	t.ActiveActors = append(t.ActiveActors, id)
	sort.Slice(t.ActiveActors, func(i, j int) bool { return t.ActiveActors[i] < t.ActiveActors[j] })
}

// Deactivate removes id from the active set.
func (t *Turn) Deactivate(id EntityID) {
	for i, a := range t.ActiveActors {
		if a == id {
			t.ActiveActors = append(t.ActiveActors[:i], t.ActiveActors[i+1:]...)
			return
		}
	}
}

// Entities groups every entity collection in the world.
type Entities struct {
	Player *ActorState  `json:"player"`
	NPCs   []ActorState `json:"npcs"`
	Props  []PropState  `json:"props"`
	Items  []ItemState  `json:"items"`
}

// Clone deep-copies all entity collections.
func (e Entities) Clone() Entities {
	out := Entities{
		Player: e.Player.Clone(),
		NPCs:   make([]ActorState, len(e.NPCs)),
		Props:  make([]PropState, len(e.Props)),
		Items:  make([]ItemState, len(e.Items)),
	}
	for i := range e.NPCs {
		out.NPCs[i] = *e.NPCs[i].Clone()
	}
	for i := range e.Props {
		out.Props[i] = *e.Props[i].Clone()
	}
	for i := range e.Items {
		out.Items[i] = *e.Items[i].Clone()
	}
	return out
}

// FindActor returns the actor with id (player or NPC), or nil.
func (e *Entities) FindActor(id EntityID) *ActorState {
	if id == PlayerID {
		return e.Player
	}
	for i := range e.NPCs {
		if e.NPCs[i].ID == id {
			return &e.NPCs[i]
		}
	}
	return nil
}

// FindProp returns the prop with id, or nil.
func (e *Entities) FindProp(id EntityID) *PropState {
	for i := range e.Props {
		if e.Props[i].ID == id {
			return &e.Props[i]
		}
	}
	return nil
}

// FindItem returns the item with id, or nil.
func (e *Entities) FindItem(id EntityID) *ItemState {
	for i := range e.Items {
		if e.Items[i].ID == id {
			return &e.Items[i]
		}
	}
	return nil
}

// AllActorIDs returns every actor id (player first, then NPCs sorted).
func (e *Entities) AllActorIDs() []EntityID {
	ids := make([]EntityID, 0, len(e.NPCs)+1)
	if e.Player != nil {
		ids = append(ids, e.Player.ID)
	}
	for _, n := range e.NPCs {
		ids = append(ids, n.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GameState is the single authoritative world entity, owned exclusively by
// the simulation worker. Every mutation must flow through the
// engine's ActionTransition implementations — see internal/engine.
type GameState struct {
	Seed     uint64   `json:"seed"`
	Turn     Turn     `json:"turn"`
	Entities Entities `json:"entities"`
	World    World    `json:"world"`
}

// New returns an empty GameState seeded with the given RNG seed.
func New(seed uint64) *GameState {
	return &GameState{
		Seed:     seed,
		Turn:     Turn{ActiveActors: []EntityID{}},
		Entities: Entities{NPCs: []ActorState{}, Props: []PropState{}, Items: []ItemState{}},
		World:    NewWorld(),
	}
}

// Clone returns a deep copy. The engine snapshots `before = state.Clone()`
// at the top of every Execute call, and the persistence
// worker stores cloned before/after snapshots in every ActionLogEntry.
func (s *GameState) Clone() *GameState {
	if s == nil {
		return nil
	}
	return &GameState{
		Seed:     s.Seed,
		Turn:     s.Turn.Clone(),
		Entities: s.Entities.Clone(),
		World:    s.World.Clone(),
	}
}

// ValidateOccupancy checks that for every (position, occupants) pair,
// each occupant id's actor/prop/item really sits at that position. Used
// by post_validate after movement and by property-based tests.
func (s *GameState) ValidateOccupancy() error {
	for pos, ids := range s.World.Occupants {
		for _, id := range ids {
			if actor := s.Entities.FindActor(id); actor != nil {
				if actor.Position == nil || *actor.Position != pos {
					return occupancyDesyncErr(id, pos)
				}
				continue
			}
			if prop := s.Entities.FindProp(id); prop != nil {
				if prop.Position != pos {
					return occupancyDesyncErr(id, pos)
				}
				continue
			}
			if item := s.Entities.FindItem(id); item != nil {
				if item.Position == nil || *item.Position != pos {
					return occupancyDesyncErr(id, pos)
				}
				continue
			}
			return occupancyDesyncErr(id, pos)
		}
	}
	return nil
}
