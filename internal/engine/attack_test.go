package engine

import (
	"testing"

	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

// attackTestEnv's Damage effect is tuned so a default-stats attacker
// (STR=10) against a default-stats target (AC=15, halved to 7) lands
// for exactly 5: BaseAmount 2 + STR 10 * ScalingFactor 1.0 - AC/2 7 = 5.
func attackTestEnv() oracle.Env {
	return oracle.NewEmpty().
		WithBounds(10, 10).
		WithAction(oracle.ActionProfile{
			Kind:     gstate.ActionAttack,
			BaseCost: 100,
			Range:    1,
			Effects: []oracle.Effect{
				{Kind: oracle.EffectDamage, BaseAmount: 2, ScalingStat: "str", ScalingFactor: 1.0, MinAmount: 1},
			},
		}).
		WithConfig("activation_radius", 8).
		AsEnv()
}

func withAttacker(s *gstate.GameState) {
	pos := gstate.Position{X: 3, Y: 3}
	s.Entities.NPCs = append(s.Entities.NPCs, gstate.ActorState{
		ID:        gstate.EntityID(2),
		Position:  &pos,
		Resources: gstate.Resources{HP: 10, MaxHP: 10},
		Core:      gstate.CoreStats{STR: 10, CON: 10, DEX: 10, INT: 10, WIL: 10, EGO: 10},
		Bonuses:   gstate.NewBonuses(),
	})
	s.World.Add(pos, gstate.EntityID(2))
}

func TestAttackRejectsOutOfRangeTarget(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	withAttacker(s)
	s.Entities.NPCs[0].Position = &gstate.Position{X: 9, Y: 9}

	target := gstate.EntityID(2)
	if _, err := e.Execute(s, attackTestEnv(), Action{Actor: gstate.PlayerID, Kind: gstate.ActionAttack, Input: Input{Target: &target}}); err == nil {
		t.Fatal("expected attacking a target outside range to fail")
	}
}

func TestAttackRejectsSelfTarget(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	target := gstate.PlayerID
	if _, err := e.Execute(s, attackTestEnv(), Action{Actor: gstate.PlayerID, Kind: gstate.ActionAttack, Input: Input{Target: &target}}); err == nil {
		t.Fatal("expected attacking oneself to fail")
	}
}

func TestAttackRejectsDeadTarget(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	withAttacker(s)
	s.Entities.NPCs[0].Position = &gstate.Position{X: 2, Y: 3}
	s.Entities.NPCs[0].Resources.HP = 0

	target := gstate.EntityID(2)
	if _, err := e.Execute(s, attackTestEnv(), Action{Actor: gstate.PlayerID, Kind: gstate.ActionAttack, Input: Input{Target: &target}}); err == nil {
		t.Fatal("expected attacking an already-dead target to fail")
	}
}

func TestAttackInRangeSucceedsAndIsDeterministic(t *testing.T) {
	target := gstate.EntityID(2)

	run := func() (int32, error) {
		e := NewEngine()
		s := newTestState()
		withAttacker(s)
		s.Entities.NPCs[0].Position = &gstate.Position{X: 2, Y: 3}
		// Force a guaranteed hit so the damage roll itself stays out of
		// this test's assertion: the seed/actor/target combination here
		// happens to roll above the default 60% hit chance.
		s.Entities.Player.Bonuses.Modifiers["hit_chance"] = gstate.BonusStack{Flat: []gstate.Bonus{{Amount: 50}}}
		_, err := e.Execute(s, attackTestEnv(), Action{Actor: gstate.PlayerID, Kind: gstate.ActionAttack, Input: Input{Target: &target}})
		return s.Entities.NPCs[0].Resources.HP, err
	}

	hp1, err := run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hp1 != 5 {
		t.Fatalf("expected a default-stats attack to deal 5 damage (10 hp -> 5), got hp=%d", hp1)
	}

	hp2, err := run()
	if err != nil {
		t.Fatalf("expected a second identical attack to behave the same way, got: %v", err)
	}
	if hp2 != hp1 {
		t.Fatalf("expected a second identical attack to deal the same damage, got hp=%d want %d", hp2, hp1)
	}
}
