package schedule

import (
	"github.com/ivoronin/ftzzgo/internal/fixture"
	"github.com/ivoronin/ftzzgo/internal/seed"
)

// DuplicateConfig bundles the knobs duplicate insertion and draining need,
// shared by DynamicGenerator and StaticGenerator.
type DuplicateConfig struct {
	Percentage  float64
	MaxPerFile  int
	Permissions []uint16
}

// addDuplicates scans specs for primaries that should spawn duplicates and
// either appends them locally (with their size, if sizes is non-nil) or
// scatters them into pending for placement in a later batch (§4.5.2).
//
// dupRNG must be a clone of the task stream, never the task stream itself,
// so duplication rolls never perturb the primary structural sampling
// sequence (§4.1).
func addDuplicates(specs *[]fixture.FileSpec, sizes *[]uint64, pending *[]fixture.PendingDuplicate, cfg DuplicateConfig, dupRNG *seed.Stream) {
	numFiles := len(*specs)
	if numFiles == 0 || cfg.Percentage <= 0 || cfg.MaxPerFile < 2 {
		return
	}

	// avg_extra = M/2; prob = (p/100) / avg_extra. A prob > 1 (very high
	// percentage, small M) means every eligible file spawns duplicates —
	// a plain float comparison against dupRNG.Float64() already saturates
	// that way since Float64 never returns >= 1.
	avgExtra := float64(cfg.MaxPerFile) / 2
	prob := (cfg.Percentage / 100) / avgExtra

	for i := 0; i < numFiles; i++ {
		if sizes != nil && (*sizes)[i] == 0 {
			continue
		}

		if dupRNG.Float64() >= prob {
			continue
		}

		originalSeed := (*specs)[i].Seed
		maxExtra := cfg.MaxPerFile - 1
		copies := 1
		if maxExtra > 1 {
			copies = dupRNG.IntN(maxExtra) + 1
		}

		var sizeVal *uint64
		if sizes != nil {
			v := (*sizes)[i]
			sizeVal = &v
		}

		for c := 0; c < copies; c++ {
			dup := fixture.FileSpec{
				Seed:        originalSeed,
				IsDuplicate: true,
				Mode:        modeFor(originalSeed, cfg.Permissions),
			}

			if dupRNG.Uint32()%2 == 0 {
				// Scatter: defer to a later (possibly different) directory.
				*pending = append(*pending, fixture.PendingDuplicate{Spec: dup, Size: sizeVal})
			} else {
				// Local: append to this batch.
				*specs = append(*specs, dup)
				if sizes != nil {
					*sizes = append(*sizes, *sizeVal)
				}
			}
		}
	}
}

// drainPending moves duplicates from the tail of pending (LIFO) into specs,
// up to limit items, or everything when final is true. Each drained
// duplicate's recorded size (or 0 if none was recorded) is appended to
// sizes when tracking.
func drainPending(pending *[]fixture.PendingDuplicate, specs *[]fixture.FileSpec, sizes *[]uint64, numFiles uint64, final bool) {
	limit := len(*pending)
	if !final {
		batchLimit := int(numFiles / 2)
		if batchLimit < 1 {
			batchLimit = 1
		}
		if batchLimit < limit {
			limit = batchLimit
		}
	}

	for n := 0; n < limit; n++ {
		last := len(*pending) - 1
		dup := (*pending)[last]
		*pending = (*pending)[:last]

		*specs = append(*specs, dup.Spec)
		if sizes != nil {
			if dup.Size != nil {
				*sizes = append(*sizes, *dup.Size)
			} else {
				// A scattered duplicate with no recorded size contributes
				// 0 bytes to the running total rather than resampling.
				*sizes = append(*sizes, 0)
			}
		}
	}
}
