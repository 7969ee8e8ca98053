package gstate

import (
	"encoding/binary"
	"sort"
)

// canonicalWriter accumulates the fixed-order, fixed-width byte
// serialization that state_root is computed over. It intentionally avoids
// encoding/json or encoding/gob: those formats do not guarantee a single
// canonical byte layout across Go versions, and host/guest parity demands
// bit-identical serialization.
type canonicalWriter struct {
	buf []byte
}

func newCanonicalWriter() *canonicalWriter {
	return &canonicalWriter{buf: make([]byte, 0, 4096)}
}

func (w *canonicalWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

func (w *canonicalWriter) i32(v int32) { w.u64(uint64(uint32(v))) }
func (w *canonicalWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *canonicalWriter) u8(v uint8)   { w.buf = append(w.buf, v) }
func (w *canonicalWriter) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

// str writes a length-prefixed UTF-8 string so variable-length fields never
// create ambiguity about where one field ends and the next begins.
func (w *canonicalWriter) str(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *canonicalWriter) bytes() []byte { return w.buf }

func (w *canonicalWriter) position(p Position) {
	w.i32(p.X)
	w.i32(p.Y)
}

func (w *canonicalWriter) optionalPosition(p *Position) {
	w.boolean(p != nil)
	if p != nil {
		w.position(*p)
	}
}

func (w *canonicalWriter) core(c CoreStats) {
	w.u8(c.STR)
	w.u8(c.CON)
	w.u8(c.DEX)
	w.u8(c.INT)
	w.u8(c.WIL)
	w.u8(c.EGO)
}

func (w *canonicalWriter) resources(r Resources) {
	w.i32(r.HP)
	w.i32(r.MaxHP)
	w.i32(r.MP)
	w.i32(r.MaxMP)
	w.i32(r.Lucidity)
	w.i32(r.MaxLucid)
}

func (w *canonicalWriter) equipment(e EquipmentSlots) {
	writeOptID := func(id *EntityID) {
		w.boolean(id != nil)
		if id != nil {
			w.u32(uint32(*id))
		}
	}
	writeOptID(e.Weapon)
	writeOptID(e.Armor)
	writeOptID(e.Accessory)
}

func (w *canonicalWriter) statusEffects(effects []StatusEffect) {
	sorted := append([]StatusEffect(nil), effects...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	w.u32(uint32(len(sorted)))
	for _, e := range sorted {
		w.str(e.ID)
		w.u64(uint64(e.RemainingDuration))
		w.u8(e.Stacks)
	}
}

func (w *canonicalWriter) actions(actions []ActionKind) {
	sorted := append([]ActionKind(nil), actions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	w.u32(uint32(len(sorted)))
	for _, a := range sorted {
		w.str(string(a))
	}
}

func (w *canonicalWriter) strings(ss []string) {
	sorted := append([]string(nil), ss...)
	sort.Strings(sorted)
	w.u32(uint32(len(sorted)))
	for _, s := range sorted {
		w.str(s)
	}
}

func (w *canonicalWriter) inventory(inv []InventorySlot) {
	sorted := append([]InventorySlot(nil), inv...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ItemID < sorted[j].ItemID })
	w.u32(uint32(len(sorted)))
	for _, s := range sorted {
		w.u32(uint32(s.ItemID))
		w.u32(s.Quantity)
	}
}

func (w *canonicalWriter) traitProfile(t TraitProfile) {
	for _, v := range t {
		w.u8(v)
	}
}

func (w *canonicalWriter) actor(a ActorState) {
	w.u32(uint32(a.ID))
	w.optionalPosition(a.Position)
	w.core(a.Core)
	w.resources(a.Resources)
	w.equipment(a.Equipment)
	w.statusEffects(a.StatusEffects)
	w.actions(a.Actions)
	w.strings(a.Passives)
	w.inventory(a.Inventory)
	w.str(a.Provider.Kind)
	w.str(a.Provider.AIKind)
	w.traitProfile(a.TraitProfile)
	w.str(a.Species)
	w.str(a.Faction)
	w.boolean(a.ReadyAt != nil)
	if a.ReadyAt != nil {
		w.u64(uint64(*a.ReadyAt))
	}
}

func (w *canonicalWriter) prop(p PropState) {
	w.u32(uint32(p.ID))
	w.position(p.Position)
	w.str(p.Kind)
	w.boolean(p.Open)
	w.boolean(p.Locked)
}

func (w *canonicalWriter) item(i ItemState) {
	w.u32(uint32(i.ID))
	w.optionalPosition(i.Position)
	w.str(i.DefID)
	w.u32(i.Quantity)
}

func (w *canonicalWriter) turn(t Turn) {
	w.u32(uint32(t.CurrentActor))
	w.u64(uint64(t.Clock))
	w.u64(uint64(t.Nonce))
	active := append([]EntityID(nil), t.ActiveActors...)
	sort.Slice(active, func(i, j int) bool { return active[i] < active[j] })
	w.u32(uint32(len(active)))
	for _, id := range active {
		w.u32(uint32(id))
	}
}

func (w *canonicalWriter) world(wd World) {
	positions := wd.SortedPositions()
	w.u32(uint32(len(positions)))
	for _, pos := range positions {
		w.position(pos)
		occ := wd.Occupants[pos]
		w.u32(uint32(len(occ)))
		for _, id := range occ {
			w.u32(uint32(id))
		}
	}
}

// Canonical serializes (seed, turn, entities, world) in a fixed field
// order: entities sorted by EntityID, world positions sorted
// lexicographically. Equal states always produce equal byte strings.
func Canonical(s *GameState) []byte {
	w := newCanonicalWriter()
	w.u64(s.Seed)
	w.turn(s.Turn)

	w.boolean(s.Entities.Player != nil)
	if s.Entities.Player != nil {
		w.actor(*s.Entities.Player)
	}

	npcs := append([]ActorState(nil), s.Entities.NPCs...)
	sort.Slice(npcs, func(i, j int) bool { return npcs[i].ID < npcs[j].ID })
	w.u32(uint32(len(npcs)))
	for _, a := range npcs {
		w.actor(a)
	}

	props := append([]PropState(nil), s.Entities.Props...)
	sort.Slice(props, func(i, j int) bool { return props[i].ID < props[j].ID })
	w.u32(uint32(len(props)))
	for _, p := range props {
		w.prop(p)
	}

	items := append([]ItemState(nil), s.Entities.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	w.u32(uint32(len(items)))
	for _, it := range items {
		w.item(it)
	}

	w.world(s.World)
	return w.bytes()
}
