// Package schedule implements the probabilistic tree-shape scheduler and
// the two task generators (dynamic and static/exact) that decide, one
// directory at a time, how many files and subdirectories to create and how
// to reconcile that with exact-count targets.
package schedule

import (
	"github.com/ivoronin/ftzzgo/internal/distribution"
	"github.com/ivoronin/ftzzgo/internal/fixture"
	"github.com/ivoronin/ftzzgo/internal/pathbuf"
	"github.com/ivoronin/ftzzgo/internal/seed"
)

// taskResult is what a dispatched materialization reports back.
type taskResult struct {
	outcome fixture.TaskOutcome
	err     error
}

// Handle refers to one in-flight (or already finished) materialization
// task. Wait blocks until the task completes.
type Handle struct {
	resultCh chan taskResult
}

// Wait blocks for the task's outcome.
func (h *Handle) Wait() (fixture.TaskOutcome, error) {
	r := <-h.resultCh
	return r.outcome, r.err
}

// Dispatch submits params for materialization, bounded by the scheduler's
// in-flight worker cap, and returns immediately with a Handle.
type Dispatch func(params fixture.TaskParams) *Handle

// QueueResult is the outcome of one QueueGen/MaybeQueueFinalGen call: either
// a dispatched task (NothingToDo == false) or a signal that there was no
// work to do, in which case IdleBuf carries back the path buffer so the
// caller can recycle it.
type QueueResult struct {
	Handle      *Handle
	NumFiles    int64
	NumDirs     int
	Done        bool
	NothingToDo bool
	IdleBuf     *pathbuf.Buf
}

// Generator builds the per-directory batch of file specs and subdirectory
// counts, manages the pending-duplicate buffer, and dispatches tasks to the
// materializer. DynamicGenerator and StaticGenerator are the two variants;
// they share duplicate-insertion logic (duplicate.go).
type Generator interface {
	// QueueGen builds and dispatches a task for one directory visited
	// during the walk. mayGenDirs tells the generator whether the walk is
	// allowed to descend further from here (false at max depth).
	// taskStream is the freshly derived per-directory RNG stream (§4.1).
	QueueGen(numFilesDistr distribution.Normal, dir *pathbuf.Buf, mayGenDirs bool, sizePool *pathbuf.SizeVectorPool, taskStream *seed.Stream, dispatch Dispatch) QueueResult

	// MaybeQueueFinalGen is called after the walk completes, in a loop,
	// to flush any residual work (pending duplicates, exact-count
	// shortfall) until it reports NothingToDo.
	MaybeQueueFinalGen(dir *pathbuf.Buf, sizePool *pathbuf.SizeVectorPool, taskStream *seed.Stream, dispatch Dispatch) QueueResult
}
