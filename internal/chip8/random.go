package chip8

import "math/rand/v2"

// Random is the byte source used by the RND instruction.
type Random interface {
	Byte() byte
}

type pcgRandom struct {
	rng *rand.Rand
}

// NewRandom returns a deterministic byte source seeded with seed.
func NewRandom(seed uint64) Random {
	return &pcgRandom{
		rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

func (r *pcgRandom) Byte() byte {
	return byte(r.rng.Uint32())
}
