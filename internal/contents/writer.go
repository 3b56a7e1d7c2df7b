// Package contents implements the three file-content strategies the
// materializer can use for a batch: writing nothing, sampling a size and
// filling it on the fly, or writing a size that was already decided by the
// scheduler (bytes-exact mode).
//
// All three share one contract so the materializer can treat them
// interchangeably; the only thing that varies between them is how the byte
// count for a given file number is decided.
package contents

import (
	"io"
	"math/rand/v2"
	"os"

	"github.com/ivoronin/ftzzgo/internal/distribution"
	"github.com/ivoronin/ftzzgo/internal/seed"
)

// defaultFileMode is applied when the caller supplies no permission
// palette, matching the original's fallback of 0o664.
const defaultFileMode = 0o664

// Writer produces the bytes of one file and reports how many were written
// and, if a hash was requested, its 64-bit digest.
type Writer interface {
	// Create writes path's content. fileSeed re-seeds a local RNG so that
	// two files sharing a seed produce byte-identical content regardless
	// of which Writer instance or file number is involved — this is what
	// makes duplicates byte-identical to their primary. mode, when non-nil,
	// is the creation mode and is applied again with os.Chmod after
	// creation; a Chmod failure is returned as an error. hashSeed,
	// when non-nil, causes bytes to be streamed through a HashingWriter and
	// the digest returned.
	Create(path string, fileNum int, fileSeed uint64, mode *uint16, hashSeed *uint64) (bytesWritten int64, hash *uint64, err error)

	// SizeVectorReturn gives back the []uint64 size vector the writer was
	// constructed with, if any, so the caller can recycle it into the
	// scheduler's SizeVectorPool. Only Predefined returns a non-nil slice.
	SizeVectorReturn() []uint64
}

func applyMode(path string, mode *uint16) error {
	if mode == nil {
		return nil
	}
	return os.Chmod(path, os.FileMode(*mode))
}

// Empty creates files with no content, applying the given mode.
type Empty struct{}

func (Empty) Create(path string, _ int, _ uint64, mode *uint16, _ *uint64) (int64, *uint64, error) {
	m := defaultFileMode
	if mode != nil {
		m = int(*mode)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(m))
	if err != nil {
		return 0, nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return 0, nil, cerr
	}
	if err := applyMode(path, mode); err != nil {
		return 0, nil, err
	}
	return 0, nil, nil
}

func (Empty) SizeVectorReturn() []uint64 { return nil }

// OnTheFlyWriter samples a size per file from a truncated normal and fills it
// with either pseudo-random bytes or a fixed fill byte.
type OnTheFlyWriter struct {
	SizeDistr distribution.Normal
	FillByte  *byte
}

func (w OnTheFlyWriter) Create(path string, fileNum int, fileSeed uint64, mode *uint16, hashSeed *uint64) (int64, *uint64, error) {
	fileRNG := seed.NewStream(fileSeed)
	n := w.SizeDistr.Sample(fileRNG)
	if n == 0 {
		return Empty{}.Create(path, fileNum, fileSeed, mode, hashSeed)
	}
	return writeSized(path, int64(n), fileRNG, w.FillByte, mode, hashSeed)
}

func (OnTheFlyWriter) SizeVectorReturn() []uint64 { return nil }

// Predefined looks up the size for fileNum in a size vector the scheduler
// computed ahead of time (bytes-exact mode).
type Predefined struct {
	Sizes    []uint64
	FillByte *byte
}

func (w Predefined) Create(path string, fileNum int, fileSeed uint64, mode *uint16, hashSeed *uint64) (int64, *uint64, error) {
	n := w.Sizes[fileNum]
	if n == 0 {
		return Empty{}.Create(path, fileNum, fileSeed, mode, hashSeed)
	}
	fileRNG := seed.NewStream(fileSeed)
	return writeSized(path, int64(n), fileRNG, w.FillByte, mode, hashSeed)
}

func (w Predefined) SizeVectorReturn() []uint64 { return w.Sizes }

func writeSized(path string, n int64, fileRNG *seed.Stream, fillByte *byte, mode *uint16, hashSeed *uint64) (int64, *uint64, error) {
	m := defaultFileMode
	if mode != nil {
		m = int(*mode)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(m))
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	var dst io.Writer = f
	var hw *HashingWriter
	if hashSeed != nil {
		hw = NewHashingWriter(f, *hashSeed)
		dst = hw
	}

	var src io.Reader
	if fillByte != nil {
		src = io.LimitReader(newRepeatReader(*fillByte), n)
	} else {
		src = io.LimitReader(newRandReader(fileRNG), n)
	}

	written, err := io.Copy(dst, src)
	if err != nil {
		return written, nil, err
	}
	if err := applyMode(path, mode); err != nil {
		return written, nil, err
	}
	var hash *uint64
	if hw != nil {
		sum := hw.Sum64()
		hash = &sum
	}
	return written, hash, nil
}

// randReader adapts a seed.Stream into an io.Reader of pseudo-random bytes.
type randReader struct {
	r *rand.Rand
}

func newRandReader(s *seed.Stream) *randReader {
	// s exposes no direct *rand.Rand, but Uint64 composes into bytes cheaply.
	return &randReader{r: rand.New(rand.NewPCG(s.Uint64(), s.Uint64()))}
}

func (rr *randReader) Read(p []byte) (int, error) {
	for i := range p {
		if i%8 == 0 {
			v := rr.r.Uint64()
			for j := 0; j < 8 && i+j < len(p); j++ {
				p[i+j] = byte(v >> (8 * j))
			}
		}
	}
	return len(p), nil
}

// repeatReader is an endless io.Reader of one repeated byte, kept local for
// symmetry with randReader.
type repeatReader struct {
	b byte
}

func newRepeatReader(b byte) *repeatReader { return &repeatReader{b: b} }

func (rr *repeatReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = rr.b
	}
	return len(p), nil
}
