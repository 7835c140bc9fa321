package impact

import (
	"math/rand/v2"
	"sync"
)

var jitterOffsets = []float64{-0.03, -0.02, -0.01, 0.01, 0.02, 0.03, 0.04}

// Jitter supplies the offset used to de-round suspiciously round confidences.
type Jitter interface {
	Offset() float64
}

// JitterFunc adapts a function to Jitter.
type JitterFunc func() float64

// Offset implements Jitter.
func (f JitterFunc) Offset() float64 { return f() }

// FixedJitter always returns offset; handy for reproducible tests.
func FixedJitter(offset float64) Jitter {
	return JitterFunc(func() float64 { return offset })
}

type randomJitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomJitter picks offsets from a fixed set. A zero seed draws a random one.
func NewRandomJitter(seed uint64) Jitter {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &randomJitter{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (r *randomJitter) Offset() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return jitterOffsets[r.rng.IntN(len(jitterOffsets))]
}
