package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Rand is the subset of *math/rand.Rand the game draws from. Every random
// decision in the engine goes through one of these two calls so tests can
// script the outcome.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// NewRand returns a math/rand generator seeded from crypto/rand. The result
// is not safe for concurrent use; give each goroutine its own.
func NewRand() *rand.Rand {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))
}

// RollPercent returns a uniform integer in [1,100].
func RollPercent(r Rand) int {
	return r.Intn(100) + 1
}

// Uniform returns a float uniformly distributed in [lo,hi].
func Uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
