// Package seed provides deterministic, derivable random streams.
//
// A single user-supplied seed roots a tree of streams: the scheduler derives
// one child stream per directory visited, and each directory task draws one
// seed per file from its own stream. Two runs with the same root seed and
// the same shaping parameters draw the identical sequence of child seeds,
// which is what makes the whole tree reproducible.
package seed

import "math/rand/v2"

// Stream is a single deterministic random source. It is not safe for
// concurrent use; each directory task owns exactly one.
type Stream struct {
	src *rand.PCG
	r   *rand.Rand
}

// NewStream creates the root stream from the user-supplied seed.
func NewStream(userSeed uint64) *Stream {
	src := rand.NewPCG(userSeed, userSeed)
	return &Stream{src: src, r: rand.New(src)}
}

// Derive draws a fresh u64 from s, intended to seed a child Stream.
// Used by the scheduler once per directory visit.
func (s *Stream) Derive() uint64 {
	return s.r.Uint64()
}

// DeriveStream draws a seed from s and wraps it in a new Stream.
func (s *Stream) DeriveStream() *Stream {
	return NewStream(s.Derive())
}

// Clone returns an independent copy of s with identical future output: the
// clone's generator state is copied, not shared, so draws from the clone
// never advance s (and vice versa). The duplication subroutine receives a
// clone of the task stream so its rolls never perturb the primary
// structural sampling sequence.
func (s *Stream) Clone() *Stream {
	state, err := s.src.MarshalBinary()
	if err != nil {
		panic("seed: PCG.MarshalBinary: " + err.Error())
	}

	src := &rand.PCG{}
	if err := src.UnmarshalBinary(state); err != nil {
		panic("seed: PCG.UnmarshalBinary: " + err.Error())
	}

	return &Stream{src: src, r: rand.New(src)}
}

// Uint64 draws a raw u64, used directly for per-file seeds.
func (s *Stream) Uint64() uint64 {
	return s.r.Uint64()
}

// Uint32 draws a raw u32, used for the duplicate scatter-or-local coin flip.
func (s *Stream) Uint32() uint32 {
	return s.r.Uint32()
}

// Float64 draws a value in [0, 1), used for probability rolls.
func (s *Stream) Float64() float64 {
	return s.r.Float64()
}

// IntN draws a value in [0, n).
func (s *Stream) IntN(n int) int {
	return s.r.IntN(n)
}
