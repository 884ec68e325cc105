package simulation

import (
	"math/rand/v2"

	"github.com/brianvoe/gofakeit/v7"
)

const pcgStream = 0x9e3779b97f4a7c15

// Rand is the random source threaded through every generator of a scenario.
// It is seeded once per run so a fixed seed reproduces the same tables.
type Rand struct {
	rng   *rand.Rand
	faker *gofakeit.Faker
}

func NewRand(seed int64) *Rand {
	return &Rand{
		rng:   rand.New(rand.NewPCG(uint64(seed), uint64(seed)^pcgStream)),
		faker: gofakeit.New(uint64(seed)),
	}
}

// intBetween returns a uniform int in [lo, hi].
func (r *Rand) intBetween(lo, hi int) int {
	return lo + r.rng.IntN(hi-lo+1)
}

func (r *Rand) int64Between(lo, hi int64) int64 {
	return lo + r.rng.Int64N(hi-lo+1)
}

func (r *Rand) chance(p float64) bool {
	return r.rng.Float64() < p
}
