// Package distribution implements the truncated-normal sampling used to
// shape the generated tree: file counts, subdirectory counts, and
// per-file byte sizes are all drawn from the same family of distribution.
package distribution

import (
	"math"

	"github.com/ivoronin/ftzzgo/internal/seed"
)

// maxRejectionAttempts bounds how many times Sample re-rolls a value that
// falls outside [0, 2*mean) before giving up and returning the mean.
const maxRejectionAttempts = 5

// Normal is a normal distribution with a fixed mean and standard deviation.
// math/rand/v2 dropped NormFloat64 (only the legacy math/rand package kept
// it), so sampling here uses a Box-Muller transform over two uniform draws
// from the stream.
type Normal struct {
	Mean   float64
	StdDev float64
}

// TruncatedNormal builds the Normal used for a "truncated normal
// sample": mean+0.5, stddev (mean+0.5)/3.
func TruncatedNormal(mean float64) Normal {
	m := mean + 0.5
	return Normal{Mean: m, StdDev: m / 3}
}

// sampleRaw draws one value from the underlying (non-truncated) normal via
// Box-Muller, using two independent uniforms from s.
func (n Normal) sampleRaw(s *seed.Stream) float64 {
	u1 := s.Float64()
	// Avoid log(0); u1 == 0 has probability 0 in practice but guard anyway.
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	u2 := s.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return n.Mean + n.StdDev*z
}

// Sample draws a non-negative integer value from n, rejecting samples
// outside [0, 2*mean) up to five times before falling back to floor(mean).
func (n Normal) Sample(s *seed.Stream) uint64 {
	max := n.Mean * 2
	for i := 0; i < maxRejectionAttempts; i++ {
		x := n.sampleRaw(s)
		if x >= 0 && x < max {
			return uint64(x)
		}
	}
	return uint64(n.Mean)
}
