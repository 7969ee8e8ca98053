package gstate

import "bytes"

import "testing"

func sampleState() *GameState {
	s := New(7)
	pos := Position{X: 1, Y: 2}
	s.Entities.Player = &ActorState{
		ID:       PlayerID,
		Position: &pos,
		Core:     CoreStats{STR: 10, CON: 10, DEX: 10, INT: 10, WIL: 10, EGO: 10},
		Actions:  []ActionKind{ActionWait, ActionMove},
		Passives: []string{"b", "a"},
	}
	s.Entities.NPCs = []ActorState{{ID: 2, Position: &Position{X: 5, Y: 5}}}
	_ = s.World.Add(pos, PlayerID)
	_ = s.World.Add(Position{X: 5, Y: 5}, EntityID(2))
	return s
}

func TestCanonicalIsDeterministicAcrossFieldOrder(t *testing.T) {
	a := sampleState()
	b := sampleState()
	// shuffle the order-independent collections before encoding.
	b.Entities.Player.Actions = []ActionKind{ActionMove, ActionWait}
	b.Entities.Player.Passives = []string{"a", "b"}

	ca := Canonical(a)
	cb := Canonical(b)
	if !bytes.Equal(ca, cb) {
		t.Fatal("canonical encoding must not depend on slice insertion order for sorted fields")
	}
}

func TestCanonicalDivergesOnSemanticChange(t *testing.T) {
	a := sampleState()
	b := sampleState()
	b.Entities.Player.Core.STR = 11

	if bytes.Equal(Canonical(a), Canonical(b)) {
		t.Fatal("expected canonical encodings to diverge on a real state difference")
	}
}

func TestStateRootMatchesEqualStates(t *testing.T) {
	a := sampleState()
	b := sampleState()
	if StateRoot(a) != StateRoot(b) {
		t.Fatal("expected equal states to produce equal state roots")
	}

	b.Entities.NPCs[0].Position.X = 6
	if StateRoot(a) == StateRoot(b) {
		t.Fatal("expected differing states to produce differing state roots")
	}
}

func TestRootFromBytesRoundTrips(t *testing.T) {
	r := StateRoot(sampleState())
	got := RootFromBytes(r.Bytes())
	if got != r {
		t.Fatal("expected RootFromBytes(r.Bytes()) to round-trip to r")
	}
}

func TestRootFromBytesPanicsOnWrongLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected RootFromBytes to panic on a short slice")
		}
	}()
	RootFromBytes([]byte{1, 2, 3})
}
