package schedule

import (
	"github.com/ivoronin/ftzzgo/internal/distribution"
	"github.com/ivoronin/ftzzgo/internal/fixture"
	"github.com/ivoronin/ftzzgo/internal/seed"
)

// generatePrimarySpecs draws numFiles primary file specs from s, assigning
// each a fresh per-file seed and, if a permission palette is configured, a
// mode selected by that seed (§4.5.1).
func generatePrimarySpecs(numFiles uint64, s *seed.Stream, permissions []uint16) []fixture.FileSpec {
	specs := make([]fixture.FileSpec, 0, numFiles)
	for i := uint64(0); i < numFiles; i++ {
		fileSeed := s.Uint64()
		specs = append(specs, fixture.FileSpec{
			Seed:        fileSeed,
			IsDuplicate: false,
			Mode:        modeFor(fileSeed, permissions),
		})
	}
	return specs
}

// modeFor selects a mode from permissions deterministically by seed, or
// returns nil when no palette is configured.
func modeFor(seedVal uint64, permissions []uint16) *uint16 {
	if len(permissions) == 0 {
		return nil
	}
	m := permissions[seedVal%uint64(len(permissions))]
	return &m
}

// dirsToGen samples a subdirectory count, forcing one subdirectory when the
// directory produced files but the walk is otherwise allowed to descend and
// happened to sample zero — guaranteeing forward progress toward max depth.
func dirsToGen(filesCreated uint64, mayGenDirs bool, numDirsDistr distribution.Normal, s *seed.Stream) int {
	if !mayGenDirs {
		return 0
	}
	dirs := int(numDirsDistr.Sample(s))
	if filesCreated > 0 && dirs == 0 {
		return 1
	}
	return dirs
}
