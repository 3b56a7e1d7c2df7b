package schedule

import (
	"github.com/ivoronin/ftzzgo/internal/contents"
	"github.com/ivoronin/ftzzgo/internal/distribution"
	"github.com/ivoronin/ftzzgo/internal/fixture"
	"github.com/ivoronin/ftzzgo/internal/pathbuf"
	"github.com/ivoronin/ftzzgo/internal/seed"
)

// GeneratorBytes configures on-the-fly content sizing, shared by both
// generator variants.
type GeneratorBytes struct {
	SizeDistr distribution.Normal
	FillByte  *byte
}

// DynamicGenerator has no exactness constraints: file and subdirectory
// counts are sampled independently at every directory, with no running
// budget (§4.5.4).
type DynamicGenerator struct {
	NumDirsDistr distribution.Normal
	Bytes        *GeneratorBytes
	Dup          DuplicateConfig
	Pending      []fixture.PendingDuplicate
}

func (g *DynamicGenerator) QueueGen(numFilesDistr distribution.Normal, dir *pathbuf.Buf, mayGenDirs bool, _ *pathbuf.SizeVectorPool, taskStream *seed.Stream, dispatch Dispatch) QueueResult {
	numFiles := numFilesDistr.Sample(taskStream)
	numDirs := dirsToGen(numFiles, mayGenDirs, g.NumDirsDistr, taskStream)

	specs := generatePrimarySpecs(numFiles, taskStream, g.Dup.Permissions)

	// Duplication rolls never perturb primary structural sampling: they
	// run against a clone of the task stream (§4.1).
	dupRNG := taskStream.Clone()

	var writer contents.Writer
	if g.Bytes != nil {
		addDuplicates(&specs, nil, &g.Pending, g.Dup, dupRNG)
		drainPending(&g.Pending, &specs, nil, numFiles, false)

		writer = contents.OnTheFlyWriter{SizeDistr: g.Bytes.SizeDistr, FillByte: g.Bytes.FillByte}
	} else {
		writer = contents.Empty{}
	}

	return dispatchBatch(dispatch, dir, specs, numDirs, 0, writer, false)
}

func (g *DynamicGenerator) MaybeQueueFinalGen(dir *pathbuf.Buf, _ *pathbuf.SizeVectorPool, _ *seed.Stream, dispatch Dispatch) QueueResult {
	if len(g.Pending) == 0 {
		return QueueResult{NothingToDo: true, IdleBuf: dir}
	}

	specs := make([]fixture.FileSpec, 0, len(g.Pending))
	for i := len(g.Pending) - 1; i >= 0; i-- {
		specs = append(specs, g.Pending[i].Spec)
	}
	g.Pending = g.Pending[:0]

	var writer contents.Writer
	if g.Bytes != nil {
		writer = contents.OnTheFlyWriter{SizeDistr: g.Bytes.SizeDistr, FillByte: g.Bytes.FillByte}
	} else {
		writer = contents.Empty{}
	}

	return dispatchBatch(dispatch, dir, specs, 0, 0, writer, true)
}

// dispatchBatch wraps a built batch into a QueueResult, dispatching it
// unless there is genuinely nothing to do (no files and no dirs), in which
// case the path buffer is returned to the caller for recycling.
func dispatchBatch(dispatch Dispatch, dir *pathbuf.Buf, specs []fixture.FileSpec, numDirs int, offset uint64, writer contents.Writer, done bool) QueueResult {
	if len(specs) == 0 && numDirs == 0 {
		return QueueResult{NothingToDo: true, IdleBuf: dir}
	}

	params := fixture.TaskParams{
		TargetDir:  dir,
		FileSpecs:  specs,
		NumDirs:    numDirs,
		FileOffset: offset,
		Writer:     writer,
		Hash:       false,
	}

	return QueueResult{
		Handle:   dispatch(params),
		NumFiles: int64(len(specs)),
		NumDirs:  numDirs,
		Done:     done,
	}
}
