package gstate

// ActionKind tags the closed set of action variants the engine dispatches
// on: a tagged sum, never a class hierarchy.
type ActionKind string

const (
	ActionMove         ActionKind = "Move"
	ActionAttack       ActionKind = "Attack"
	ActionUseItem      ActionKind = "UseItem"
	ActionInteract     ActionKind = "Interact"
	ActionWait         ActionKind = "Wait"
	ActionPrepareTurn  ActionKind = "PrepareTurn"  // system
	ActionActivation   ActionKind = "Activation"   // system
	ActionActionCost   ActionKind = "ActionCost"   // system
)

// ProviderKind distinguishes the human player from an AI-controlled actor.
// AIKind is an oracle-defined label (e.g. "aggressive_melee_brute") and is
// empty when Kind == ProviderPlayer.
type ProviderKind struct {
	Kind   string `json:"kind"` // "player" | "ai"
	AIKind string `json:"ai_kind,omitempty"`
}

const (
	ProviderPlayer = "player"
	ProviderAI     = "ai"
)

// StatusEffect is an active, time-bounded modifier on an actor.
type StatusEffect struct {
	ID                string `json:"id"`
	RemainingDuration  Tick   `json:"remaining_duration"`
	Stacks             uint8  `json:"stacks"`
}

// EquipmentSlots holds the (at most one) item occupying each equip slot.
// A nil pointer means the slot is empty.
type EquipmentSlots struct {
	Weapon    *EntityID `json:"weapon,omitempty"`
	Armor     *EntityID `json:"armor,omitempty"`
	Accessory *EntityID `json:"accessory,omitempty"`
}

// InventorySlot is one stack of items held by an actor. Inventory is a
// bounded sequence (capacity enforced by the oracle's actor template, not
// hardcoded here).
type InventorySlot struct {
	ItemID   EntityID `json:"item_id"`
	Quantity uint32   `json:"quantity"`
}

// TraitProfile is the 20-dimension, [0,240]-bounded vector that drives
// AI scoring. It is always resolved at actor spawn time — see
// SPEC_FULL.md's resolution of Open Question #1 — never computed lazily.
type TraitProfile [20]uint8

// ActorState is a player or NPC in the world.
type ActorState struct {
	ID            EntityID        `json:"id"`
	Position      *Position       `json:"position,omitempty"` // nil while unplaced (e.g. in a container)
	Core          CoreStats       `json:"core_stats"`
	Resources     Resources       `json:"resources"`
	Equipment     EquipmentSlots  `json:"equipment"`
	StatusEffects []StatusEffect  `json:"status_effects"`
	Actions       []ActionKind    `json:"actions"`
	Passives      []string        `json:"passives"`
	Bonuses       Bonuses         `json:"bonuses"`
	Inventory     []InventorySlot `json:"inventory"`
	Provider      ProviderKind    `json:"provider_kind"`
	TraitProfile  TraitProfile    `json:"trait_profile"`
	Species       string          `json:"species"`
	Faction       string          `json:"faction"`
	ReadyAt       *Tick           `json:"ready_at,omitempty"`
}

// Derive recomputes the effective/derived/speed/modifier/resource-maxima
// views from Core, the current Bonuses cache, and active StatusEffects
// (which drive the Conditions bonus-stack stage), then clamps current
// resources to the freshly derived maxima.
func (a *ActorState) Derive() (CoreStats, DerivedStats, SpeedStats, Modifiers) {
	effective, derived, speed, mods, resMax := DeriveStats(a.Core, a.Bonuses, a.StatusEffects)
	a.Resources.MaxHP = resMax.MaxHP
	a.Resources.MaxMP = resMax.MaxMP
	a.Resources.MaxLucid = resMax.MaxLucid
	a.Resources.Clamp()
	return effective, derived, speed, mods
}

// Alive reports whether the actor has strictly positive HP.
func (a *ActorState) Alive() bool { return a.Resources.HP > 0 }

// Clone returns a deep copy so mutation of the clone never aliases the
// original — required because the engine snapshots `before` at the start
// of every Execute call.
func (a *ActorState) Clone() *ActorState {
	if a == nil {
		return nil
	}
	c := *a
	if a.Position != nil {
		p := *a.Position
		c.Position = &p
	}
	c.StatusEffects = append([]StatusEffect(nil), a.StatusEffects...)
	c.Actions = append([]ActionKind(nil), a.Actions...)
	c.Passives = append([]string(nil), a.Passives...)
	c.Inventory = append([]InventorySlot(nil), a.Inventory...)
	c.Bonuses = a.Bonuses.Clone()
	if a.ReadyAt != nil {
		r := *a.ReadyAt
		c.ReadyAt = &r
	}
	return &c
}

// PropState is a static-until-interacted-with world object (a door, a
// lever, a chest).
type PropState struct {
	ID       EntityID `json:"id"`
	Position Position `json:"position"`
	Kind     string   `json:"kind"`
	Open     bool     `json:"open"`
	Locked   bool     `json:"locked"`
}

func (p *PropState) Clone() *PropState {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// ItemState is a world-resident item (not yet picked up, or dropped).
type ItemState struct {
	ID       EntityID  `json:"id"`
	Position *Position `json:"position,omitempty"` // nil when held in an inventory
	DefID    string    `json:"def_id"`
	Quantity uint32    `json:"quantity"`
}

func (i *ItemState) Clone() *ItemState {
	if i == nil {
		return nil
	}
	c := *i
	if i.Position != nil {
		p := *i.Position
		c.Position = &p
	}
	return &c
}
