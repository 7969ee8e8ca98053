package gstate

import "testing"

func TestResourcesClamp(t *testing.T) {
	r := Resources{HP: 500, MaxHP: 100, MP: -5, MaxMP: 50, Lucidity: 10, MaxLucid: 5}
	r.Clamp()
	if r.HP != 100 {
		t.Errorf("expected HP clamped to 100, got %d", r.HP)
	}
	if r.MP != 0 {
		t.Errorf("expected MP clamped to 0, got %d", r.MP)
	}
	if r.Lucidity != 5 {
		t.Errorf("expected Lucidity clamped to 5, got %d", r.Lucidity)
	}
}

func TestBonusStackApplyOrder(t *testing.T) {
	stack := BonusStack{
		Flat:       []Bonus{{Kind: BonusFlat, Amount: 10}},
		Increased:  []Bonus{{Kind: BonusIncreased, Amount: 0.5}},
		More:       []Bonus{{Kind: BonusMore, Amount: 0.1}},
		Less:       []Bonus{{Kind: BonusLess, Amount: 0.2}},
		Conditions: []Bonus{{Kind: BonusConditions, Amount: 0.25}},
	}
	// base 10 -> flat: 20 -> increased (1.5x): 30 -> more (1.1x): 33 -> less (0.8x): 26.4 -> conditions (1.25x): 33
	got := stack.Apply(10)
	want := 33.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestConditionBonusesScalesWithStacks(t *testing.T) {
	effects := []StatusEffect{{ID: "haste", Stacks: 2}, {ID: "weakened", Stacks: 1}}
	got := conditionBonuses(effects, "speed.physical")
	if len(got) != 1 || got[0].Amount != 1.0 {
		t.Fatalf("expected a single doubled haste bonus of 1.0, got %+v", got)
	}
}

func TestCostMultiplierCombinesActiveEffects(t *testing.T) {
	if m := CostMultiplier(nil); m != 1.0 {
		t.Fatalf("expected no active effects to yield a 1.0 multiplier, got %v", m)
	}
	m := CostMultiplier([]StatusEffect{{ID: "hexed", Stacks: 1}})
	if diff := m - 1.5; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected hexed to yield a 1.5 cost multiplier, got %v", m)
	}
}

func TestDeriveStatsAppliesConditionsFromStatusEffects(t *testing.T) {
	core := CoreStats{STR: 10, CON: 10, DEX: 10, INT: 10, WIL: 10, EGO: 10}
	bonuses := NewBonuses()
	effects := []StatusEffect{{ID: "haste", Stacks: 1}}

	_, _, hasted, _, _ := DeriveStats(core, bonuses, effects)
	_, _, baseline, _, _ := DeriveStats(core, bonuses, nil)

	if hasted.Physical <= baseline.Physical {
		t.Fatalf("expected haste to raise physical speed above baseline %d, got %d", baseline.Physical, hasted.Physical)
	}
}

func TestDeriveStatsIsPureAndClamped(t *testing.T) {
	core := CoreStats{STR: 200, CON: 50, DEX: 10, INT: 10, WIL: 10, EGO: 10}
	bonuses := NewBonuses()

	eff1, derived1, speed1, mods1, resMax1 := DeriveStats(core, bonuses, nil)
	eff2, derived2, speed2, mods2, resMax2 := DeriveStats(core, bonuses, nil)

	if eff1 != eff2 || derived1 != derived2 || speed1 != speed2 || mods1 != mods2 || resMax1 != resMax2 {
		t.Fatal("DeriveStats must be pure: identical inputs produced different outputs")
	}
	if eff1.STR != coreMax {
		t.Fatalf("expected STR clamped to %d, got %d", coreMax, eff1.STR)
	}
	if speed1.Physical < speedMin || speed1.Physical > speedMax {
		t.Fatalf("expected speed within [%d,%d], got %d", speedMin, speedMax, speed1.Physical)
	}
}

func TestBonusesCloneIsIndependent(t *testing.T) {
	b := NewBonuses()
	b.Core["str"] = BonusStack{Flat: []Bonus{{Amount: 1}}}

	c := b.Clone()
	c.Core["str"] = BonusStack{Flat: []Bonus{{Amount: 99}}}

	if len(b.Core["str"].Flat) != 1 || b.Core["str"].Flat[0].Amount != 1 {
		t.Fatal("mutating the clone's bonus cache mutated the original")
	}
}
