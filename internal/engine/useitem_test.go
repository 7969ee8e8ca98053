package engine

import (
	"testing"

	"github.com/ocx/roguevm/internal/gstate"
	"github.com/ocx/roguevm/internal/oracle"
)

func useItemTestEnv() oracle.Env {
	return oracle.NewEmpty().
		WithBounds(10, 10).
		WithItem(oracle.ItemDef{ID: "potion", Name: "Potion", Stacks: true}).
		WithAction(oracle.ActionProfile{
			Kind:     gstate.ActionUseItem,
			BaseCost: 100,
			Effects:  []oracle.Effect{{Kind: oracle.EffectHeal, BaseAmount: 5}},
		}).
		WithConfig("activation_radius", 8).
		AsEnv()
}

func TestUseItemHealsAndDecrementsStack(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	s.Entities.Player.Resources.HP = 3
	s.Entities.Player.Inventory = []gstate.InventorySlot{{ItemID: gstate.EntityID(9), Quantity: 2}}
	s.Entities.Items = []gstate.ItemState{{ID: gstate.EntityID(9), DefID: "potion", Quantity: 2}}
	env := useItemTestEnv()

	itemID := gstate.EntityID(9)
	if _, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionUseItem, Input: Input{ItemID: &itemID}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Entities.Player.Resources.HP != 8 {
		t.Fatalf("expected HP to heal by 5, got %d", s.Entities.Player.Resources.HP)
	}
	if len(s.Entities.Player.Inventory) != 1 || s.Entities.Player.Inventory[0].Quantity != 1 {
		t.Fatalf("expected the stack to decrement by one, got %+v", s.Entities.Player.Inventory)
	}
}

func TestUseItemRemovesSlotWhenStackExhausted(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	s.Entities.Player.Inventory = []gstate.InventorySlot{{ItemID: gstate.EntityID(9), Quantity: 1}}
	s.Entities.Items = []gstate.ItemState{{ID: gstate.EntityID(9), DefID: "potion", Quantity: 1}}
	env := useItemTestEnv()

	itemID := gstate.EntityID(9)
	if _, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionUseItem, Input: Input{ItemID: &itemID}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Entities.Player.Inventory) != 0 {
		t.Fatalf("expected the inventory slot to be removed once exhausted, got %+v", s.Entities.Player.Inventory)
	}
}

func TestUseItemRejectsItemNotInInventory(t *testing.T) {
	e := NewEngine()
	s := newTestState()
	env := useItemTestEnv()
	itemID := gstate.EntityID(42)
	if _, err := e.Execute(s, env, Action{Actor: gstate.PlayerID, Kind: gstate.ActionUseItem, Input: Input{ItemID: &itemID}}); err == nil {
		t.Fatal("expected using an item not in inventory to fail")
	}
}
