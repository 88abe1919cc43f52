// Package engine holds the pure parts of the draw: quota normalization,
// remaining-weighted platform picking, the reveal wheel and the heat guard.
// Nothing here touches storage; randomness arrives through Rand so tests
// can fix the seed.
package engine

import (
	"math/rand/v2"
	"sync"
)

// Rand is the randomness source for picking and shuffling.
// Implementations must be safe for concurrent use.
type Rand interface {
	// IntN returns a uniform int in [0, n). n must be > 0.
	IntN(n int) int
}

// NewRand returns a Rand. A zero seed uses the runtime-seeded global
// generator; any other seed gives a reproducible sequence.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		return globalRand{}
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// shuffle is an in-place Fisher-Yates shuffle driven by r.
func shuffle(r Rand, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, r.IntN(i+1))
	}
}
