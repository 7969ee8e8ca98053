// Package prover wraps the zkVM proving step (component C5): composing
// the public journal a batch's proof commits to, and the Backend that
// actually runs the prover and returns it.
package prover

import (
	"encoding/binary"
	"fmt"

	"github.com/ocx/roguevm/internal/gstate"
)

// JournalSize is the fixed byte length of a batch's public journal: five
// 32-byte roots plus an 8-byte little-endian nonce. The journal states
// that this batch moved the session from prev_state_root to
// new_state_root under oracle_root, seeded by seed_commitment, replaying
// actions_root. A fixed layout means the on-chain verifier never needs
// to parse a length-prefixed structure.
const JournalSize = 32*5 + 8

// Journal is the decoded form of the bytes a proof's public output carries.
type Journal struct {
	OracleRoot     gstate.Root
	SeedCommitment gstate.Root
	PrevStateRoot  gstate.Root
	ActionsRoot    gstate.Root
	NewStateRoot   gstate.Root
	NewNonce       gstate.Nonce
}

// Compose lays Journal out in the fixed 168-byte wire format.
func (j Journal) Compose() []byte {
	buf := make([]byte, JournalSize)
	off := 0
	for _, r := range []gstate.Root{j.OracleRoot, j.SeedCommitment, j.PrevStateRoot, j.ActionsRoot, j.NewStateRoot} {
		copy(buf[off:off+32], r.Bytes())
		off += 32
	}
	binary.LittleEndian.PutUint64(buf[off:off+8], uint64(j.NewNonce))
	return buf
}

// ParseJournal decodes bytes produced by Compose, rejecting anything of
// the wrong length outright — a truncated or padded journal can never be
// a genuine proof output.
func ParseJournal(b []byte) (Journal, error) {
	if len(b) != JournalSize {
		return Journal{}, fmt.Errorf("prover: journal must be %d bytes, got %d", JournalSize, len(b))
	}
	var j Journal
	off := 0
	roots := make([]*gstate.Root, 5)
	roots[0], roots[1], roots[2], roots[3], roots[4] = &j.OracleRoot, &j.SeedCommitment, &j.PrevStateRoot, &j.ActionsRoot, &j.NewStateRoot
	for _, r := range roots {
		*r = gstate.RootFromBytes(b[off : off+32])
		off += 32
	}
	j.NewNonce = gstate.Nonce(binary.LittleEndian.Uint64(b[off : off+8]))
	return j, nil
}
