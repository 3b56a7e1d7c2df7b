package schedule

import (
	"testing"

	"github.com/ivoronin/ftzzgo/internal/distribution"
	"github.com/ivoronin/ftzzgo/internal/fixture"
	"github.com/ivoronin/ftzzgo/internal/pathbuf"
	"github.com/ivoronin/ftzzgo/internal/seed"
)

func TestStaticGeneratorFilesExactStopsAtBudget(t *testing.T) {
	budget := uint64(3)
	g := &StaticGenerator{
		NumDirsDistr: distribution.TruncatedNormal(0),
		FilesExact:   &budget,
	}
	dir := pathbuf.New("/root")
	stream := seed.NewStream(1)

	var captured []fixture.TaskParams
	// A generously large per-directory mean so the first batch exceeds
	// the budget and StaticGenerator must clamp to it.
	res := g.QueueGen(distribution.TruncatedNormal(100), dir, true, pathbuf.NewSizeVectorPool(), stream, fakeDispatch(&captured))

	if res.NothingToDo {
		t.Fatal("QueueGen reported NothingToDo with a positive budget")
	}
	if len(captured) != 1 {
		t.Fatalf("dispatch called %d times, want 1", len(captured))
	}
	if uint64(len(captured[0].FileSpecs)) != 3 {
		t.Fatalf("FileSpecs count = %d, want clamped to budget 3", len(captured[0].FileSpecs))
	}
	if !g.done {
		t.Error("done = false after the budget was exhausted")
	}
}

func TestStaticGeneratorMaybeQueueFinalGenNothingLeft(t *testing.T) {
	budget := uint64(0)
	g := &StaticGenerator{FilesExact: &budget}
	g.done = true

	var captured []fixture.TaskParams
	res := g.MaybeQueueFinalGen(pathbuf.New("/root"), pathbuf.NewSizeVectorPool(), seed.NewStream(1), fakeDispatch(&captured))

	if !res.NothingToDo {
		t.Fatal("MaybeQueueFinalGen reported work when already done")
	}
	if len(captured) != 0 {
		t.Errorf("dispatch called when already done")
	}
}

func TestStaticGeneratorMaybeQueueFinalGenFlushesRemainder(t *testing.T) {
	budget := uint64(7)
	g := &StaticGenerator{FilesExact: &budget}

	var captured []fixture.TaskParams
	res := g.MaybeQueueFinalGen(pathbuf.New("/root"), pathbuf.NewSizeVectorPool(), seed.NewStream(1), fakeDispatch(&captured))

	if res.NothingToDo {
		t.Fatal("MaybeQueueFinalGen reported NothingToDo with a nonzero remaining files-exact budget")
	}
	if len(captured) != 1 || uint64(len(captured[0].FileSpecs)) != 7 {
		t.Fatalf("expected one dispatch of the full remaining budget (7), got %+v", captured)
	}
	if !g.done {
		t.Error("done = false after flushing the remainder")
	}
}

func TestStaticGeneratorMaybeQueueFinalGenDrainsPendingAfterMidWalkDone(t *testing.T) {
	budget := uint64(0) // files-exact budget already exhausted mid-walk
	g := &StaticGenerator{
		Bytes:      &GeneratorBytes{SizeDistr: distribution.TruncatedNormal(1)},
		FilesExact: &budget,
		Pending: []fixture.PendingDuplicate{
			{Spec: fixture.FileSpec{Seed: 11, IsDuplicate: true}},
			{Spec: fixture.FileSpec{Seed: 12, IsDuplicate: true}},
		},
	}
	g.done = true // set as if QueueGen hit the budget in an earlier directory

	var captured []fixture.TaskParams
	res := g.MaybeQueueFinalGen(pathbuf.New("/root"), pathbuf.NewSizeVectorPool(), seed.NewStream(1), fakeDispatch(&captured))

	if res.NothingToDo {
		t.Fatal("MaybeQueueFinalGen reported NothingToDo despite pending duplicates")
	}
	if len(g.Pending) != 0 {
		t.Fatalf("Pending after final flush = %d, want 0 (drained at termination)", len(g.Pending))
	}
	if len(captured) != 1 || len(captured[0].FileSpecs) != 2 {
		t.Fatalf("expected one dispatch carrying the 2 drained duplicates, got %+v", captured)
	}

	// A second call must be a no-op: the flush only ever dispatches once.
	res2 := g.MaybeQueueFinalGen(pathbuf.New("/root"), pathbuf.NewSizeVectorPool(), seed.NewStream(1), fakeDispatch(&captured))
	if !res2.NothingToDo {
		t.Fatal("second MaybeQueueFinalGen call should report NothingToDo")
	}
}

func TestStaticGeneratorQueueGenNoOpsOnceDone(t *testing.T) {
	budget := uint64(0)
	g := &StaticGenerator{FilesExact: &budget}
	g.done = true

	var captured []fixture.TaskParams
	res := g.QueueGen(distribution.TruncatedNormal(10), pathbuf.New("/root"), true, pathbuf.NewSizeVectorPool(), seed.NewStream(1), fakeDispatch(&captured))

	if !res.NothingToDo {
		t.Fatal("QueueGen dispatched a batch after done was already set")
	}
	if len(captured) != 0 {
		t.Errorf("dispatch called %d times, want 0 once done", len(captured))
	}
}

func TestStaticGeneratorBytesExactRedistributesRemainder(t *testing.T) {
	filesBudget := uint64(2)
	bytesBudget := uint64(100)
	g := &StaticGenerator{
		NumDirsDistr: distribution.TruncatedNormal(0),
		Bytes:        &GeneratorBytes{SizeDistr: distribution.TruncatedNormal(1)},
		FilesExact:   &filesBudget,
		BytesExact:   &bytesBudget,
	}
	dir := pathbuf.New("/root")
	stream := seed.NewStream(3)

	var captured []fixture.TaskParams
	res := g.QueueGen(distribution.TruncatedNormal(100), dir, true, pathbuf.NewSizeVectorPool(), stream, fakeDispatch(&captured))

	if res.NothingToDo {
		t.Fatal("QueueGen reported NothingToDo")
	}
	if !g.done {
		t.Fatal("done = false after the files-exact budget was exhausted in one batch")
	}
	if *g.BytesExact != 0 {
		t.Errorf("BytesExact remaining = %d, want 0 (fully redistributed on the final batch)", *g.BytesExact)
	}

	pred, ok := captured[0].Writer.(interface{ SizeVectorReturn() []uint64 })
	if !ok {
		t.Fatal("Writer does not expose a size vector")
	}
	sizes := pred.SizeVectorReturn()
	var total uint64
	for _, s := range sizes {
		total += s
	}
	if total != 100 {
		t.Errorf("sum of redistributed sizes = %d, want 100", total)
	}
}
