package prover

import (
	"bytes"
	"testing"

	"github.com/ocx/roguevm/internal/gstate"
)

func root(b byte) gstate.Root {
	var r gstate.Root
	for i := range r {
		r[i] = b
	}
	return r
}

func TestJournalComposeParseRoundTrip(t *testing.T) {
	j := Journal{
		OracleRoot:     root(1),
		SeedCommitment: root(2),
		PrevStateRoot:  root(3),
		ActionsRoot:    root(4),
		NewStateRoot:   root(5),
		NewNonce:       gstate.Nonce(1234),
	}

	wire := j.Compose()
	if len(wire) != JournalSize {
		t.Fatalf("expected composed journal to be %d bytes, got %d", JournalSize, len(wire))
	}

	got, err := ParseJournal(wire)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got != j {
		t.Fatalf("expected round-tripped journal to equal original, got %+v want %+v", got, j)
	}
}

func TestJournalFieldLayout(t *testing.T) {
	j := Journal{OracleRoot: root(0xAA), NewNonce: 1}
	wire := j.Compose()
	if !bytes.Equal(wire[0:32], root(0xAA).Bytes()) {
		t.Fatal("expected OracleRoot to occupy the first 32 bytes")
	}
}

func TestParseJournalRejectsWrongLength(t *testing.T) {
	if _, err := ParseJournal(make([]byte, JournalSize-1)); err == nil {
		t.Fatal("expected an error parsing a short journal")
	}
	if _, err := ParseJournal(make([]byte, JournalSize+1)); err == nil {
		t.Fatal("expected an error parsing an overlong journal")
	}
}
