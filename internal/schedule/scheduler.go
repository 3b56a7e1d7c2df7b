package schedule

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ivoronin/ftzzgo/internal/audit"
	"github.com/ivoronin/ftzzgo/internal/distribution"
	"github.com/ivoronin/ftzzgo/internal/fixture"
	"github.com/ivoronin/ftzzgo/internal/pathbuf"
	"github.com/ivoronin/ftzzgo/internal/seed"
)

// RunConfig parameterizes one walk: where to root it, how deep it may go,
// how to sample per-directory file counts, which Generator variant drives
// it, how many materializations may be in flight at once, and where audit
// events and content hashes go.
type RunConfig struct {
	Root          string
	MaxDepth      int
	NumFilesDistr distribution.Normal
	Generator     Generator
	MaxInFlight   int
	Stream        *seed.Stream
	Audit         audit.Sink
	Hash          bool

	// OnProgress, if set, is called with a running snapshot of Stats after
	// every batch is accounted for (both synchronously-known counts and,
	// once a task is awaited, its byte total). It is only ever called on
	// the goroutine that called Run, never from a materialization worker.
	OnProgress func(Stats)
}

// Stats accumulates the walk's totals across every dispatched task.
type Stats struct {
	FilesCreated int64
	DirsCreated  int64
	BytesWritten int64
}

// Run performs the depth-first walk described by cfg.Generator (§4.7): at
// the root, queues a generation task with descent allowed whenever
// MaxDepth > 0; for each subdirectory a task reports, it recurses one
// level deeper, stopping generation (but not descent of already-reported
// subdirectories) past MaxDepth. The walk itself runs single-threaded on
// the calling goroutine — it is the only thing allowed to touch the
// parent RNG stream — while every dispatched batch materializes
// concurrently on a bounded worker set. Once the walk unwinds, it drains
// any residual work (pending duplicates, exact-count shortfall) by
// calling MaybeQueueFinalGen at the root until it reports nothing left to
// do, then awaits every outstanding task to fold in byte totals and
// return pooled buffers.
func Run(ctx context.Context, cfg RunConfig) (Stats, error) {
	g, gctx := errgroup.WithContext(ctx)
	if cfg.MaxInFlight > 0 {
		g.SetLimit(cfg.MaxInFlight)
	}

	sink := cfg.Audit
	if sink == nil {
		sink = audit.NullSink{}
	}

	r := &runner{
		cfg:      cfg,
		audit:    sink,
		g:        g,
		pathPool: pathbuf.NewPool(),
		sizePool: pathbuf.NewSizeVectorPool(),
	}

	root := r.pathPool.Get(cfg.Root)
	pending, walkErr := r.walk(gctx, root, 0, nil)

	if walkErr == nil {
		for {
			finalStream := cfg.Stream.DeriveStream()
			dir := r.pathPool.Get(cfg.Root)
			res := cfg.Generator.MaybeQueueFinalGen(dir, r.sizePool, finalStream, r.dispatch)

			if res.NothingToDo {
				r.pathPool.Put(res.IdleBuf)
				break
			}

			r.accountBatch(res)
			pending = append(pending, res)
		}
	}

	for _, res := range pending {
		if err := r.await(res); err != nil && walkErr == nil {
			walkErr = err
		}
	}

	if err := g.Wait(); err != nil && walkErr == nil {
		walkErr = err
	}

	return r.stats(), walkErr
}

// runner holds the state shared across one Run call: the bounded
// materialization worker set, the recycled buffer pools, the audit sink,
// and the running totals.
type runner struct {
	cfg   RunConfig
	audit audit.Sink
	g     *errgroup.Group

	pathPool *pathbuf.Pool
	sizePool *pathbuf.SizeVectorPool

	files int64
	dirs  int64
	bytes int64

	// done latches once any dispatched batch reports Done (§4.7.4): once
	// set, walk stops initiating new QueueGen calls and visits no further
	// subdirectories, including ones a task already reported (the
	// materializer still creates those directories; they stay empty).
	// Read and written only from the single walking goroutine.
	done bool
}

func (r *runner) stats() Stats {
	return Stats{FilesCreated: r.files, DirsCreated: r.dirs, BytesWritten: r.bytes}
}

// dispatch submits params for materialization on the bounded worker set and
// returns immediately with a Handle the caller awaits later. Buffer
// recycling happens here, inside the worker goroutine, as soon as the task
// completes — independent of when (or whether) the scheduler calls Wait.
func (r *runner) dispatch(p fixture.TaskParams) *Handle {
	p.Audit = r.audit
	p.Hash = r.cfg.Hash

	h := &Handle{resultCh: make(chan taskResult, 1)}
	r.g.Go(func() error {
		outcome, err := fixture.Materialize(p)
		h.resultCh <- taskResult{outcome, err}
		if outcome.ReturnedSizes != nil {
			r.sizePool.Put(outcome.ReturnedSizes)
		}
		if outcome.ReturnedPath != nil {
			r.pathPool.Put(outcome.ReturnedPath)
		}
		return err
	})
	return h
}

// accountBatch records the counts a QueueResult already knows synchronously
// (NumFiles, NumDirs), ahead of the task's actual completion. Bytes are
// only known once the task finishes, via await.
func (r *runner) accountBatch(res QueueResult) {
	r.files += res.NumFiles
	r.dirs += int64(res.NumDirs)
	r.reportProgress()
}

func (r *runner) reportProgress() {
	if r.cfg.OnProgress != nil {
		r.cfg.OnProgress(r.stats())
	}
}

// await blocks on res.Handle and folds its byte count into the running
// total. Buffer recycling for that task already happened inside dispatch.
func (r *runner) await(res QueueResult) error {
	if res.Handle == nil {
		return nil
	}
	outcome, err := res.Handle.Wait()
	if err != nil {
		return err
	}
	r.bytes += outcome.BytesWritten
	r.reportProgress()
	return nil
}

// walk visits one directory: it queues that directory's own generation
// task (dispatched, non-blocking), then recurses sequentially into every
// subdirectory the task reports. Every dispatched QueueResult is appended
// to pending and returned up the call stack; the caller awaits them once
// the whole tree has been walked. Recursion, and every derivation of a
// child RNG stream from cfg.Stream, happens only on this single goroutine
// — cfg.Stream is not safe for concurrent use.
func (r *runner) walk(ctx context.Context, dir *pathbuf.Buf, depth int, pending []QueueResult) ([]QueueResult, error) {
	if err := ctx.Err(); err != nil {
		r.pathPool.Put(dir)
		return pending, err
	}

	// base must be captured before QueueGen returns: once it dispatches,
	// dir is owned by the materializer goroutine, which mutates it
	// concurrently via Push/Pop as it walks the batch.
	base := dir.String()

	mayGenDirs := depth < r.cfg.MaxDepth
	taskStream := r.cfg.Stream.DeriveStream()

	res := r.cfg.Generator.QueueGen(r.cfg.NumFilesDistr, dir, mayGenDirs, r.sizePool, taskStream, r.dispatch)
	if res.NothingToDo {
		r.pathPool.Put(res.IdleBuf)
		return pending, nil
	}
	r.accountBatch(res)
	pending = append(pending, res)

	if res.Done {
		r.done = true
	}

	for i := 0; i < res.NumDirs; i++ {
		if err := ctx.Err(); err != nil {
			return pending, err
		}
		if r.done {
			break
		}
		child := r.pathPool.Get(filepath.Join(base, pathbuf.DirName(i)))
		var err error
		pending, err = r.walk(ctx, child, depth+1, pending)
		if err != nil {
			return pending, err
		}
	}

	return pending, nil
}
