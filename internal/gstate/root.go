package gstate

import "golang.org/x/crypto/blake2b"

// Root is a 32-byte content hash: a state_root, oracle_root, or actions_root.
type Root [32]byte

// StateRoot hashes the canonical serialization of s with BLAKE2b-256, the
// one zkVM-friendly hash family this backend standardizes on everywhere
// rather than switching per target. Equal states produce equal roots;
// the canonical encoding in canonical.go
// guarantees semantically distinct states diverge at the first differing
// field, which blake2b then disperses across the whole digest.
func StateRoot(s *GameState) Root {
	return Root(blake2b.Sum256(Canonical(s)))
}

// Bytes returns the root's raw 32 bytes.
func (r Root) Bytes() []byte { return r[:] }

// RootFromBytes copies 32 bytes into a Root, panicking if the slice is the
// wrong length — callers are expected to have already validated length via
// the journal/record framing that produced the slice.
func RootFromBytes(b []byte) Root {
	if len(b) != 32 {
		panic("gstate: root must be exactly 32 bytes")
	}
	var r Root
	copy(r[:], b)
	return r
}
