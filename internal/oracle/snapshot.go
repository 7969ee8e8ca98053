package oracle

import (
	"encoding/binary"
	"math"
	"sort"

	"golang.org/x/crypto/blake2b"

	"github.com/ocx/roguevm/internal/gstate"
)

// OracleSnapshot is the canonical, content-addressed view of a Bundle. Its
// hash is oracle_root: the zkVM guest receives the same
// snapshot and must compute the same root bit-identically. Any field added
// to an oracle must extend this schema with a stable tag — the writer
// below walks fields in a fixed order for exactly that reason.
type OracleSnapshot struct {
	bytes []byte
}

type snapWriter struct{ buf []byte }

func (w *snapWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *snapWriter) i32(v int32) { w.u32(uint32(v)) }
func (w *snapWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *snapWriter) f64(v float64) { w.u64(math.Float64bits(v)) }
func (w *snapWriter) boolean(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}
func (w *snapWriter) str(s string) {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// Snapshot serializes the bundle's content in a fixed, sorted field order.
func Snapshot(b *Bundle) *OracleSnapshot {
	w := &snapWriter{buf: make([]byte, 0, 4096)}
	w.i32(b.c.Width)
	w.i32(b.c.Height)

	tileKeys := sortedKeys(b.c.Tiles)
	w.u32(uint32(len(tileKeys)))
	for _, k := range tileKeys {
		t := b.c.Tiles[k]
		w.str(k)
		w.boolean(t.Passable)
		w.str(t.Kind)
	}

	itemKeys := sortedKeys(b.c.Items)
	w.u32(uint32(len(itemKeys)))
	for _, k := range itemKeys {
		it := b.c.Items[k]
		w.str(k)
		w.str(it.Name)
		w.str(it.Slot)
		w.boolean(it.Stacks)
	}

	actionKeys := sortedKeys(b.c.Actions)
	w.u32(uint32(len(actionKeys)))
	for _, k := range actionKeys {
		a := b.c.Actions[k]
		w.str(k)
		w.str(string(a.Targeting))
		w.u64(uint64(a.BaseCost))
		w.u64(uint64(a.Cooldown))
		w.i32(a.Range)
		w.u32(uint32(len(a.ResourceCosts)))
		for _, rc := range a.ResourceCosts {
			w.str(rc.Resource)
			w.i32(rc.Amount)
		}
		w.u32(uint32(len(a.Effects)))
		for _, e := range a.Effects {
			w.str(string(e.Kind))
			w.i32(e.BaseAmount)
			w.str(e.ScalingStat)
			w.f64(e.ScalingFactor)
			w.i32(e.MinAmount)
			w.i32(e.KnockbackDist)
		}
		w.u32(uint32(len(a.Requirements)))
		for _, r := range a.Requirements {
			w.str(r.Kind)
		}
	}

	actorKeys := sortedKeys(b.c.Actors)
	w.u32(uint32(len(actorKeys)))
	for _, k := range actorKeys {
		t := b.c.Actors[k]
		w.str(k)
		w.str(t.Name)
		cw := newCoreWriter(t.Core)
		w.buf = append(w.buf, cw...)
		for _, v := range t.SpeciesLayer {
			w.buf = append(w.buf, v)
		}
		for _, v := range t.ArchetypeLayer {
			w.buf = append(w.buf, v)
		}
		w.u32(uint32(len(t.Actions)))
		for _, a := range t.Actions {
			w.str(string(a))
		}
		w.u32(uint32(len(t.Passives)))
		for _, p := range t.Passives {
			w.str(p)
		}
	}

	tableKeys := sortedKeys(b.c.Tables)
	w.u32(uint32(len(tableKeys)))
	for _, k := range tableKeys {
		table := b.c.Tables[k]
		w.str(k)
		innerKeys := sortedFloatKeys(table)
		w.u32(uint32(len(innerKeys)))
		for _, ik := range innerKeys {
			w.str(ik)
			w.f64(table[ik])
		}
	}

	configKeys := sortedFloatKeys(b.c.Config)
	w.u32(uint32(len(configKeys)))
	for _, k := range configKeys {
		w.str(k)
		w.f64(b.c.Config[k])
	}

	return &OracleSnapshot{bytes: w.buf}
}

func newCoreWriter(c gstate.CoreStats) []byte {
	return []byte{c.STR, c.CON, c.DEX, c.INT, c.WIL, c.EGO}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedFloatKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bytes returns the snapshot's canonical byte form.
func (s *OracleSnapshot) Bytes() []byte { return s.bytes }

// Root hashes a bundle's snapshot with BLAKE2b-256, producing oracle_root.
func Root(b *Bundle) gstate.Root {
	return gstate.Root(blake2b.Sum256(Snapshot(b).Bytes()))
}
