package engine

import "github.com/ocx/roguevm/internal/gstate"

// deterministicRoll derives a uniform uint32 from the game seed, the action
// nonce, and the two entities involved. It replaces math/rand (whose
// global source is neither seedable-per-call nor guaranteed identical
// between the host simulator and the zkVM guest) with a pure splitmix64
// mix, so the same (seed, nonce, actor, target) always produces the same
// roll on both sides of the proof.
func deterministicRoll(seed uint64, nonce gstate.Nonce, actor, target gstate.EntityID) uint32 {
	x := seed
	x ^= uint64(nonce) * 0x9E3779B97F4A7C15
	x ^= uint64(actor) * 0xBF58476D1CE4E5B9
	x ^= uint64(target) * 0x94D049BB133111EB
	x = splitmix64(x)
	return uint32(x >> 32)
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

// rollPercent folds a roll into [0, 100).
func rollPercent(v uint32) int32 { return int32(v % 100) }
