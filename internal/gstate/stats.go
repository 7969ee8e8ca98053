package gstate

// CoreStats are the six primary attributes. Bounds: [1, 99] after bonus
// application.
type CoreStats struct {
	STR uint8 `json:"str"`
	CON uint8 `json:"con"`
	DEX uint8 `json:"dex"`
	INT uint8 `json:"int"`
	WIL uint8 `json:"wil"`
	EGO uint8 `json:"ego"`
}

// Resources are the three depletable pools. Max bounds: [1, 99999].
type Resources struct {
	HP        int32 `json:"hp"`
	MaxHP     int32 `json:"max_hp"`
	MP        int32 `json:"mp"`
	MaxMP     int32 `json:"max_mp"`
	Lucidity  int32 `json:"lucidity"`
	MaxLucid  int32 `json:"max_lucidity"`
}

// Clamp clamps current resources to their maxima. Called on every
// snapshot so current resources never exceed their maxima.
func (r *Resources) Clamp() {
	r.HP = clampI32(r.HP, 0, r.MaxHP)
	r.MP = clampI32(r.MP, 0, r.MaxMP)
	r.Lucidity = clampI32(r.Lucidity, 0, r.MaxLucid)
}

// DerivedStats are attack/AC values. Bounds: [0, 9999].
type DerivedStats struct {
	Attack int32 `json:"attack"`
	AC     int32 `json:"ac"`
}

// SpeedStats govern ready_at advancement per action domain. Bounds: [50, 200].
type SpeedStats struct {
	Physical  int32 `json:"physical"`
	Cognitive int32 `json:"cognitive"`
	Ritual    int32 `json:"ritual"`
}

// Modifiers are small additive tweaks layered after derivation. Bounds: [-20, 50].
type Modifiers struct {
	HitChance int32 `json:"hit_chance"`
	DodgeRate int32 `json:"dodge_rate"`
	CritRate  int32 `json:"crit_rate"`
}

// BonusKind tags the stage a Bonus applies at in the fixed bonus-stack order:
// Flat, then Increased (summed, then multiplied), then More (sequential
// multiply), then Less (sequential multiply), then Conditions (sequential
// multiply, sourced from active StatusEffects rather than equipment).
type BonusKind uint8

const (
	BonusFlat BonusKind = iota
	BonusIncreased
	BonusMore
	BonusLess
	BonusConditions
)

// Bonus is one term in a stat's bonus stack, typically contributed by
// equipment, status effects, or passives.
type Bonus struct {
	Kind   BonusKind `json:"kind"`
	Amount float64   `json:"amount"` // flat: additive units; increased/more/less: fraction, e.g. 0.10 == +10%
	Source string    `json:"source"`
}

// BonusStack holds every bonus contributed to a single stat, already sorted
// into the fixed application order. Conditions is populated per call from
// the actor's active StatusEffects (see conditionBonuses) rather than held
// statically like the equipment-driven stages.
type BonusStack struct {
	Flat       []Bonus `json:"flat"`
	Increased  []Bonus `json:"increased"`
	More       []Bonus `json:"more"`
	Less       []Bonus `json:"less"`
	Conditions []Bonus `json:"conditions,omitempty"`
}

// Apply reduces the stack against a base value using the fixed order:
// Flat (summed), Increased (summed then applied as one multiplier), More
// (each applied as a sequential multiplier), Less (each applied as a
// sequential multiplier), Conditions (each applied as a sequential
// multiplier, last). The result is NOT clamped here; callers clamp to
// the bounds appropriate to the stat layer being computed.
func (b BonusStack) Apply(base float64) float64 {
	v := base
	for _, f := range b.Flat {
		v += f.Amount
	}
	var increasedSum float64
	for _, inc := range b.Increased {
		increasedSum += inc.Amount
	}
	v *= 1.0 + increasedSum
	for _, m := range b.More {
		v *= 1.0 + m.Amount
	}
	for _, l := range b.Less {
		v *= 1.0 - l.Amount
	}
	for _, c := range b.Conditions {
		v *= 1.0 + c.Amount
	}
	return v
}

// conditionEffect names the stat key a status effect modifies in the
// Conditions stage and the fractional multiplier it contributes per stack.
// Key is either "speed.<domain>", "derived.<stat>", or "cost_multiplier"
// for the action-cost pipeline, which isn't one of DeriveStats' outputs.
type conditionEffect struct {
	Key    string
	Amount float64
}

var conditionCatalog = map[string]conditionEffect{
	"haste":     {Key: "speed.physical", Amount: 0.50},
	"quickened": {Key: "speed.cognitive", Amount: 0.50},
	"empowered": {Key: "speed.ritual", Amount: 0.50},
	"slowed":    {Key: "speed.physical", Amount: -0.30},
	"weakened":  {Key: "derived.attack", Amount: -0.25},
	"fortified": {Key: "derived.ac", Amount: 0.20},
	"hexed":     {Key: "cost_multiplier", Amount: 0.50},
	"focused":   {Key: "cost_multiplier", Amount: -0.20},
}

// conditionBonuses returns the Conditions-stage bonuses the given status
// effects contribute to the named stat key, scaling linearly with each
// effect's stack count (a zero Stacks value counts as a single stack).
func conditionBonuses(effects []StatusEffect, key string) []Bonus {
	var out []Bonus
	for _, e := range effects {
		c, ok := conditionCatalog[e.ID]
		if !ok || c.Key != key {
			continue
		}
		stacks := float64(e.Stacks)
		if stacks <= 0 {
			stacks = 1
		}
		out = append(out, Bonus{Kind: BonusConditions, Amount: c.Amount * stacks, Source: e.ID})
	}
	return out
}

// CostMultiplier folds every active status effect's cost_multiplier
// Conditions entry into one factor the action-cost pipeline applies on top
// of base_cost/speed. 1.0 means no active modifier.
func CostMultiplier(effects []StatusEffect) float64 {
	m := 1.0
	for _, c := range conditionBonuses(effects, "cost_multiplier") {
		m *= 1.0 + c.Amount
	}
	return m
}

// Bonuses is the per-stat bonus-stack cache attached to an ActorState. It is
// recomputed whenever equipment, status effects, or passives change, and
// consumed by DeriveStats.
type Bonuses struct {
	Core      map[string]BonusStack `json:"core"`
	Derived   map[string]BonusStack `json:"derived"`
	Speed     map[string]BonusStack `json:"speed"`
	Modifiers map[string]BonusStack `json:"modifiers"`
	Resources map[string]BonusStack `json:"resources"`
}

// NewBonuses returns an empty Bonuses cache.
func NewBonuses() Bonuses {
	return Bonuses{
		Core:      map[string]BonusStack{},
		Derived:   map[string]BonusStack{},
		Speed:     map[string]BonusStack{},
		Modifiers: map[string]BonusStack{},
		Resources: map[string]BonusStack{},
	}
}

// Clone deep-copies a Bonuses cache so snapshots never alias mutable maps.
func (b Bonuses) Clone() Bonuses {
	out := Bonuses{
		Core:      make(map[string]BonusStack, len(b.Core)),
		Derived:   make(map[string]BonusStack, len(b.Derived)),
		Speed:     make(map[string]BonusStack, len(b.Speed)),
		Modifiers: make(map[string]BonusStack, len(b.Modifiers)),
		Resources: make(map[string]BonusStack, len(b.Resources)),
	}
	cp := func(m map[string]BonusStack) map[string]BonusStack {
		r := make(map[string]BonusStack, len(m))
		for k, v := range m {
			r[k] = BonusStack{
				Flat:       append([]Bonus(nil), v.Flat...),
				Increased:  append([]Bonus(nil), v.Increased...),
				More:       append([]Bonus(nil), v.More...),
				Less:       append([]Bonus(nil), v.Less...),
				Conditions: append([]Bonus(nil), v.Conditions...),
			}
		}
		return r
	}
	out.Core = cp(b.Core)
	out.Derived = cp(b.Derived)
	out.Speed = cp(b.Speed)
	out.Modifiers = cp(b.Modifiers)
	out.Resources = cp(b.Resources)
	return out
}

const (
	coreMin, coreMax       = 1, 99
	derivedMin, derivedMax = 0, 9999
	speedMin, speedMax     = 50, 200
	modMin, modMax         = -20, 50
	resMaxMin, resMaxMax   = 1, 99999
)

func clampI32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DeriveStats runs the full Core -> Effective -> Derived -> Speed ->
// Modifiers -> Resource-maxima pipeline. It is pure: given the same core
// stats, bonus cache, and status effects it always yields the same result,
// which is required for host/guest parity. effects contributes the
// Conditions stage of the speed and derived bonus stacks (see
// conditionCatalog); it is typically an actor's StatusEffects.
func DeriveStats(core CoreStats, b Bonuses, effects []StatusEffect) (effective CoreStats, derived DerivedStats, speed SpeedStats, mods Modifiers, resMax Resources) {
	withConditions := func(stack BonusStack, key string) BonusStack {
		stack.Conditions = conditionBonuses(effects, key)
		return stack
	}

	effective = CoreStats{
		STR: clampU8(b.Core["str"].Apply(float64(core.STR)), coreMin, coreMax),
		CON: clampU8(b.Core["con"].Apply(float64(core.CON)), coreMin, coreMax),
		DEX: clampU8(b.Core["dex"].Apply(float64(core.DEX)), coreMin, coreMax),
		INT: clampU8(b.Core["int"].Apply(float64(core.INT)), coreMin, coreMax),
		WIL: clampU8(b.Core["wil"].Apply(float64(core.WIL)), coreMin, coreMax),
		EGO: clampU8(b.Core["ego"].Apply(float64(core.EGO)), coreMin, coreMax),
	}

	baseAttack := float64(effective.STR)*1.5 + float64(effective.DEX)*0.5
	baseAC := float64(effective.CON)*1.2 + float64(effective.DEX)*0.3

	derived = DerivedStats{
		Attack: clampI32(int32(withConditions(b.Derived["attack"], "derived.attack").Apply(baseAttack)), derivedMin, derivedMax),
		AC:     clampI32(int32(withConditions(b.Derived["ac"], "derived.ac").Apply(baseAC)), derivedMin, derivedMax),
	}

	speed = SpeedStats{
		Physical:  clampI32(int32(withConditions(b.Speed["physical"], "speed.physical").Apply(100)), speedMin, speedMax),
		Cognitive: clampI32(int32(withConditions(b.Speed["cognitive"], "speed.cognitive").Apply(100)), speedMin, speedMax),
		Ritual:    clampI32(int32(withConditions(b.Speed["ritual"], "speed.ritual").Apply(100)), speedMin, speedMax),
	}

	mods = Modifiers{
		HitChance: clampI32(int32(b.Modifiers["hit_chance"].Apply(0)), modMin, modMax),
		DodgeRate: clampI32(int32(b.Modifiers["dodge_rate"].Apply(0)), modMin, modMax),
		CritRate:  clampI32(int32(b.Modifiers["crit_rate"].Apply(0)), modMin, modMax),
	}

	resMax = Resources{
		MaxHP:    clampI32(int32(b.Resources["hp"].Apply(float64(effective.CON)*10)), resMaxMin, resMaxMax),
		MaxMP:    clampI32(int32(b.Resources["mp"].Apply(float64(effective.WIL)*8)), resMaxMin, resMaxMax),
		MaxLucid: clampI32(int32(b.Resources["lucidity"].Apply(float64(effective.EGO)*6)), resMaxMin, resMaxMax),
	}
	return
}

func clampU8(v float64, lo, hi int32) uint8 {
	c := clampI32(int32(v), lo, hi)
	return uint8(c)
}
