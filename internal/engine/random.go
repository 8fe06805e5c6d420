package engine

import (
	"math/rand/v2"
	"sync"
)

// Random is the source of every random choice the engine makes.
// *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
	Float64() float64
}

// LockedRandom is a seeded Random safe for use by concurrent games.
type LockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewLockedRandom(seed uint64) *LockedRandom {
	return &LockedRandom{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint: gosec // game randomness
	}
}

func (that *LockedRandom) IntN(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rng.IntN(n)
}

func (that *LockedRandom) Float64() float64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rng.Float64()
}
