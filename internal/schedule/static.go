package schedule

import (
	"github.com/ivoronin/ftzzgo/internal/contents"
	"github.com/ivoronin/ftzzgo/internal/distribution"
	"github.com/ivoronin/ftzzgo/internal/fixture"
	"github.com/ivoronin/ftzzgo/internal/pathbuf"
	"github.com/ivoronin/ftzzgo/internal/seed"
)

// StaticGenerator tracks remaining file and/or byte budgets and reconciles
// them exactly by the end of the walk (§4.5.5). At least one of FilesExact,
// BytesExact is set by the caller.
type StaticGenerator struct {
	NumDirsDistr distribution.Normal
	Bytes        *GeneratorBytes
	Dup          DuplicateConfig
	Pending      []fixture.PendingDuplicate

	FilesExact *uint64 // remaining file budget, nil if not files-exact
	BytesExact *uint64 // remaining byte budget, nil if not bytes-exact

	done bool
	// flushed is set once MaybeQueueFinalGen has dispatched its one catch-up
	// batch, so repeated calls (the scheduler loops until NothingToDo) don't
	// re-dispatch. Distinct from done: done can already be true on the
	// first call (the walk finished its budget mid-tree), but the flush
	// must still run once to drain any residual Pending duplicates.
	flushed bool
	// rootFirstBatch records the root directory's first-batch file count,
	// used as the name offset for the catch-up batch MaybeQueueFinalGen
	// dispatches at the root. This only avoids name collisions at the
	// root, and assumes no further root files were created between the
	// first batch and the flush.
	rootFirstBatch *uint64
}

func (g *StaticGenerator) QueueGen(numFilesDistr distribution.Normal, dir *pathbuf.Buf, mayGenDirs bool, sizePool *pathbuf.SizeVectorPool, taskStream *seed.Stream, dispatch Dispatch) QueueResult {
	if g.done {
		return QueueResult{NothingToDo: true, IdleBuf: dir}
	}

	numFiles := numFilesDistr.Sample(taskStream)

	if g.FilesExact != nil {
		if numFiles >= *g.FilesExact {
			numFiles = *g.FilesExact
			*g.FilesExact = 0
			g.done = true
		} else {
			*g.FilesExact -= numFiles
		}
	}

	numDirs := 0
	if !g.done {
		numDirs = dirsToGen(numFiles, mayGenDirs, g.NumDirsDistr, taskStream)
	}

	res := g.queueGenInternal(dir, numFiles, numDirs, 0, sizePool, taskStream, dispatch)
	if g.rootFirstBatch == nil {
		// Count every file the root batch names, local duplicates included.
		v := uint64(res.NumFiles)
		g.rootFirstBatch = &v
	}
	return res
}

// MaybeQueueFinalGen dispatches the one catch-up batch that reconciles any
// remaining file/byte budget and drains whatever is left in Pending, even if
// done was already set mid-walk (§3: the pending-duplicate buffer must be
// empty at termination regardless of when the budget was exhausted). It
// dispatches at most once; later calls report NothingToDo so the scheduler's
// drain loop can terminate.
func (g *StaticGenerator) MaybeQueueFinalGen(dir *pathbuf.Buf, sizePool *pathbuf.SizeVectorPool, taskStream *seed.Stream, dispatch Dispatch) QueueResult {
	if g.flushed {
		return QueueResult{NothingToDo: true, IdleBuf: dir}
	}
	g.flushed = true

	wasDone := g.done
	g.done = true

	offset := uint64(0)
	if g.rootFirstBatch != nil {
		offset = *g.rootFirstBatch
	}

	switch {
	case g.FilesExact != nil && !wasDone:
		return g.queueGenInternal(dir, *g.FilesExact, 0, offset, sizePool, taskStream, dispatch)
	case g.BytesExact != nil && *g.BytesExact > 0:
		return g.queueGenInternal(dir, 1, 0, offset, sizePool, taskStream, dispatch)
	case len(g.Pending) > 0:
		return g.queueGenInternal(dir, 0, 0, offset, sizePool, taskStream, dispatch)
	default:
		return QueueResult{NothingToDo: true, IdleBuf: dir}
	}
}

func (g *StaticGenerator) queueGenInternal(dir *pathbuf.Buf, numFiles uint64, numDirs int, offset uint64, sizePool *pathbuf.SizeVectorPool, taskStream *seed.Stream, dispatch Dispatch) QueueResult {
	specs := generatePrimarySpecs(numFiles, taskStream, g.Dup.Permissions)
	dupRNG := taskStream.Clone()

	if g.Bytes == nil {
		return dispatchBatch(dispatch, dir, specs, numDirs, offset, contents.Empty{}, g.done)
	}

	if g.BytesExact != nil {
		sizes := sizePool.Get()

		if numFiles > 0 && *g.BytesExact > 0 {
			for i := uint64(0); i < numFiles; i++ {
				n := g.Bytes.SizeDistr.Sample(taskStream)
				if n > *g.BytesExact {
					n = *g.BytesExact
				}
				*g.BytesExact -= n
				sizes = append(sizes, n)
			}

			if g.done {
				base := *g.BytesExact / numFiles
				leftover := *g.BytesExact % numFiles
				*g.BytesExact = 0
				for i := range sizes {
					sizes[i] += base
					if leftover > 0 {
						sizes[i]++
						leftover--
					}
				}
			}

			addDuplicates(&specs, &sizes, &g.Pending, g.Dup, dupRNG)
		}

		drainPending(&g.Pending, &specs, &sizes, numFiles, g.done)

		if len(sizes) == 0 {
			sizePool.Put(sizes)
			return dispatchBatch(dispatch, dir, specs, numDirs, offset, contents.Empty{}, g.done)
		}

		writer := contents.Predefined{Sizes: sizes, FillByte: g.Bytes.FillByte}
		return dispatchBatch(dispatch, dir, specs, numDirs, offset, writer, g.done)
	}

	// On-the-fly mode (bytes configured, not bytes-exact): no per-file size
	// tracking, duplicates don't carry a recorded size.
	if numFiles > 0 {
		addDuplicates(&specs, nil, &g.Pending, g.Dup, dupRNG)
	}
	drainPending(&g.Pending, &specs, nil, numFiles, g.done)

	writer := contents.OnTheFlyWriter{SizeDistr: g.Bytes.SizeDistr, FillByte: g.Bytes.FillByte}
	return dispatchBatch(dispatch, dir, specs, numDirs, offset, writer, g.done)
}
