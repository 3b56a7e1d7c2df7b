package schedule

import (
	"testing"

	"github.com/ivoronin/ftzzgo/internal/contents"
	"github.com/ivoronin/ftzzgo/internal/distribution"
	"github.com/ivoronin/ftzzgo/internal/fixture"
	"github.com/ivoronin/ftzzgo/internal/pathbuf"
	"github.com/ivoronin/ftzzgo/internal/seed"
)

// fakeDispatch records every TaskParams it receives and resolves each
// Handle immediately with a synthetic outcome, so generator logic can be
// exercised without touching the filesystem.
func fakeDispatch(captured *[]fixture.TaskParams) Dispatch {
	return func(p fixture.TaskParams) *Handle {
		*captured = append(*captured, p)
		h := &Handle{resultCh: make(chan taskResult, 1)}
		h.resultCh <- taskResult{outcome: fixture.TaskOutcome{
			FilesCreated: int64(len(p.FileSpecs)),
			DirsCreated:  p.NumDirs,
		}}
		return h
	}
}

func TestDynamicGeneratorQueueGenNoBytes(t *testing.T) {
	g := &DynamicGenerator{NumDirsDistr: distribution.TruncatedNormal(1)}
	dir := pathbuf.New("/root")
	stream := seed.NewStream(1)

	var captured []fixture.TaskParams
	res := g.QueueGen(distribution.TruncatedNormal(4), dir, true, nil, stream, fakeDispatch(&captured))

	if res.NothingToDo {
		t.Fatal("QueueGen reported NothingToDo for a non-trivial mean")
	}
	if len(captured) != 1 {
		t.Fatalf("dispatch called %d times, want 1", len(captured))
	}
	if _, ok := captured[0].Writer.(contents.Empty); !ok {
		t.Errorf("Writer = %T, want contents.Empty when Bytes is unset", captured[0].Writer)
	}
}

func TestDynamicGeneratorQueueGenWithBytes(t *testing.T) {
	g := &DynamicGenerator{
		NumDirsDistr: distribution.TruncatedNormal(0),
		Bytes:        &GeneratorBytes{SizeDistr: distribution.TruncatedNormal(8)},
	}
	dir := pathbuf.New("/root")
	stream := seed.NewStream(2)

	var captured []fixture.TaskParams
	res := g.QueueGen(distribution.TruncatedNormal(6), dir, true, nil, stream, fakeDispatch(&captured))

	if res.NothingToDo {
		t.Fatal("QueueGen reported NothingToDo unexpectedly")
	}
	if len(captured) != 1 {
		t.Fatalf("dispatch called %d times, want 1", len(captured))
	}
	if _, ok := captured[0].Writer.(contents.OnTheFlyWriter); !ok {
		t.Errorf("Writer = %T, want contents.OnTheFlyWriter when Bytes is set", captured[0].Writer)
	}
}

func TestDynamicGeneratorMaybeQueueFinalGenDrainsPending(t *testing.T) {
	g := &DynamicGenerator{}
	g.Pending = []fixture.PendingDuplicate{
		{Spec: fixture.FileSpec{Seed: 1}},
		{Spec: fixture.FileSpec{Seed: 2}},
	}
	dir := pathbuf.New("/root")

	var captured []fixture.TaskParams
	res := g.MaybeQueueFinalGen(dir, nil, seed.NewStream(1), fakeDispatch(&captured))

	if res.NothingToDo {
		t.Fatal("MaybeQueueFinalGen reported NothingToDo with pending duplicates queued")
	}
	if len(captured) != 1 || len(captured[0].FileSpecs) != 2 {
		t.Fatalf("expected one dispatch draining both pending duplicates, got %+v", captured)
	}
	if len(g.Pending) != 0 {
		t.Errorf("Pending not drained: len = %d", len(g.Pending))
	}
}

func TestDynamicGeneratorMaybeQueueFinalGenNothingPending(t *testing.T) {
	g := &DynamicGenerator{}
	dir := pathbuf.New("/root")

	var captured []fixture.TaskParams
	res := g.MaybeQueueFinalGen(dir, nil, seed.NewStream(1), fakeDispatch(&captured))

	if !res.NothingToDo {
		t.Fatal("MaybeQueueFinalGen reported work with no pending duplicates")
	}
	if len(captured) != 0 {
		t.Errorf("dispatch called with nothing pending")
	}
}
