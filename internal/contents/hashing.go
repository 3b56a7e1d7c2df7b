package contents

import (
	"io"

	"github.com/cespare/xxhash/v2"
)

// HashingWriter streams bytes through to an underlying writer while
// accumulating a 64-bit xxhash digest, the "non-cryptographic hash" the
// audit trail records for a file's content.
type HashingWriter struct {
	w    io.Writer
	hash *xxhash.Digest
}

// NewHashingWriter wraps w. The seed argument is unused: xxhash.New is
// unseeded, so the digest depends only on the bytes written. It is accepted
// for symmetry with the writer-seed plumbing used elsewhere.
func NewHashingWriter(w io.Writer, _seed uint64) *HashingWriter {
	return &HashingWriter{w: w, hash: xxhash.New()}
}

func (hw *HashingWriter) Write(p []byte) (int, error) {
	n, err := hw.w.Write(p)
	if n > 0 {
		_, _ = hw.hash.Write(p[:n])
	}
	return n, err
}

// Sum64 finalizes and returns the digest.
func (hw *HashingWriter) Sum64() uint64 {
	return hw.hash.Sum64()
}
