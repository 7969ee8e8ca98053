// Package oracle implements the read-only, content-addressed game-data
// aggregate (component C1): map, item defs, action profiles, actor
// templates, combat tables, and config, all hashed into a single
// oracle_root that the zkVM guest must reproduce bit-identically.
package oracle

import (
	"github.com/ocx/roguevm/internal/errs"
	"github.com/ocx/roguevm/internal/gstate"
)

// TargetingMode enumerates how an ActionProfile resolves its target.
type TargetingMode string

const (
	TargetSelf      TargetingMode = "self"
	TargetEntity    TargetingMode = "entity"
	TargetDirection TargetingMode = "direction"
	TargetTile      TargetingMode = "tile"
	TargetInventory TargetingMode = "inventory"
)

// ResourceCost is one resource debited when an action is taken.
type ResourceCost struct {
	Resource string `yaml:"resource"` // "hp" | "mp" | "lucidity"
	Amount   int32  `yaml:"amount"`
}

// EffectKind is the closed set of effect variants an ActionProfile can
// chain. Each effect is pure under EffectContext.
type EffectKind string

const (
	EffectDamage         EffectKind = "Damage"
	EffectHeal           EffectKind = "Heal"
	EffectMoveSelf       EffectKind = "MoveSelf"
	EffectMoveTarget     EffectKind = "MoveTarget"
	EffectAcquireItem    EffectKind = "AcquireItem"
	EffectUseConsumable  EffectKind = "UseConsumable"
	EffectSwap           EffectKind = "Swap"
	EffectKnockback      EffectKind = "Knockback"
)

// Effect is one tagged-variant step of an ActionProfile's effect chain.
// Only the fields relevant to Kind are populated; this mirrors a
// per-variant payload without a Go sum-type, the same closed-dispatch
// idea applied to effects as to actions.
type Effect struct {
	Kind          EffectKind `yaml:"kind"`
	BaseAmount    int32      `yaml:"base_amount,omitempty"`
	ScalingStat   string     `yaml:"scaling_stat,omitempty"`   // "str" | "dex" | "weapon"
	ScalingFactor float64    `yaml:"scaling_factor,omitempty"`
	MinAmount     int32      `yaml:"min_amount,omitempty"`
	KnockbackDist int32      `yaml:"knockback_distance,omitempty"`
}

// Requirement gates whether an action is usable at all (e.g. "target must
// be alive", "actor must have a weapon equipped").
type Requirement struct {
	Kind string `yaml:"kind"`
}

// ActionProfile is the static definition of one ActionKind, keyed by name
// in the oracle bundle.
type ActionProfile struct {
	Kind          gstate.ActionKind `yaml:"kind"`
	Targeting     TargetingMode     `yaml:"targeting"`
	BaseCost      gstate.Tick       `yaml:"base_cost"`
	ResourceCosts []ResourceCost    `yaml:"resource_costs"`
	Effects       []Effect          `yaml:"effects"`
	Requirements  []Requirement     `yaml:"requirements"`
	Cooldown      gstate.Tick       `yaml:"cooldown"`
	Range         int32             `yaml:"range"`
}

// TileDef is one static map tile.
type TileDef struct {
	Passable bool   `yaml:"passable"`
	Kind     string `yaml:"kind"`
}

// ActorTemplate is a static NPC/player species+archetype definition used
// at spawn time.
type ActorTemplate struct {
	Name          string             `yaml:"name"`
	Core          gstate.CoreStats   `yaml:"core_stats"`
	Actions       []gstate.ActionKind `yaml:"actions"`
	Passives      []string           `yaml:"passives"`
	SpeciesLayer  [20]uint8          `yaml:"species_trait_layer"`
	ArchetypeLayer [20]uint8         `yaml:"archetype_trait_layer"`
}

// ItemDef is a static item definition.
type ItemDef struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Slot     string `yaml:"slot"` // "" for non-equippable
	Stacks   bool   `yaml:"stacks"`
}

// MapOracle resolves map geometry and passability.
type MapOracle interface {
	InBounds(p gstate.Position) bool
	IsPassable(p gstate.Position) bool
	Width() int32
	Height() int32
}

// ItemOracle resolves item definitions by id.
type ItemOracle interface {
	Item(id string) (ItemDef, error)
}

// ActionsOracle resolves action profiles by kind.
type ActionsOracle interface {
	Profile(kind gstate.ActionKind) (ActionProfile, error)
}

// ActorOracle resolves actor templates by name.
type ActorOracle interface {
	Template(name string) (ActorTemplate, error)
}

// TablesOracle resolves named numeric combat tables (hit chance curves,
// damage-divisor tables, wakeup-delay curves).
type TablesOracle interface {
	Table(name string) (map[string]float64, error)
}

// ConfigOracle resolves static tunables (activation radius, hook chain
// depth limit, default speeds) that are part of content rather than
// runtime config.
type ConfigOracle interface {
	Int(key string) (int64, error)
	Float(key string) (float64, error)
}

// notAvailable wraps a missing-key lookup as a Validation-severity error:
// a missing oracle surfaces as a validation error, never a panic.
func notAvailable(kind, key string) error {
	return errs.New(errs.KindMissingOracle, kind+" not available: "+key)
}
