package schedule

import (
	"testing"

	"github.com/ivoronin/ftzzgo/internal/fixture"
	"github.com/ivoronin/ftzzgo/internal/seed"
)

func TestAddDuplicatesNoOpBelowThresholds(t *testing.T) {
	specs := []fixture.FileSpec{{Seed: 1}}
	var pending []fixture.PendingDuplicate

	addDuplicates(&specs, nil, &pending, DuplicateConfig{Percentage: 0, MaxPerFile: 2}, seed.NewStream(1))
	if len(specs) != 1 || len(pending) != 0 {
		t.Fatalf("expected no duplicates with Percentage=0, got specs=%d pending=%d", len(specs), len(pending))
	}

	addDuplicates(&specs, nil, &pending, DuplicateConfig{Percentage: 100, MaxPerFile: 1}, seed.NewStream(1))
	if len(specs) != 1 || len(pending) != 0 {
		t.Fatalf("expected no duplicates with MaxPerFile<2, got specs=%d pending=%d", len(specs), len(pending))
	}
}

func TestAddDuplicatesSkipsZeroSizeFiles(t *testing.T) {
	specs := []fixture.FileSpec{{Seed: 1}}
	sizes := []uint64{0}
	var pending []fixture.PendingDuplicate

	addDuplicates(&specs, &sizes, &pending, DuplicateConfig{Percentage: 100, MaxPerFile: 4}, seed.NewStream(1))
	if len(specs) != 1 || len(pending) != 0 {
		t.Fatalf("expected a zero-size file never to spawn duplicates, got specs=%d pending=%d", len(specs), len(pending))
	}
}

func TestDrainPendingRespectsBatchLimitUnlessFinal(t *testing.T) {
	pending := []fixture.PendingDuplicate{
		{Spec: fixture.FileSpec{Seed: 1}},
		{Spec: fixture.FileSpec{Seed: 2}},
		{Spec: fixture.FileSpec{Seed: 3}},
		{Spec: fixture.FileSpec{Seed: 4}},
	}
	specs := []fixture.FileSpec{{Seed: 100}, {Seed: 101}}

	drainPending(&pending, &specs, nil, 2, false)
	// batchLimit = numFiles/2 = 1
	if len(pending) != 3 {
		t.Fatalf("pending after non-final drain = %d, want 3 (only 1 drained)", len(pending))
	}
	if len(specs) != 3 {
		t.Fatalf("specs after non-final drain = %d, want 3", len(specs))
	}
}

func TestDrainPendingFinalDrainsEverything(t *testing.T) {
	pending := []fixture.PendingDuplicate{
		{Spec: fixture.FileSpec{Seed: 1}},
		{Spec: fixture.FileSpec{Seed: 2}},
	}
	specs := []fixture.FileSpec{}

	drainPending(&pending, &specs, nil, 0, true)
	if len(pending) != 0 {
		t.Fatalf("pending after final drain = %d, want 0", len(pending))
	}
	if len(specs) != 2 {
		t.Fatalf("specs after final drain = %d, want 2", len(specs))
	}
}

func TestDrainPendingMissingSizeContributesZero(t *testing.T) {
	pending := []fixture.PendingDuplicate{{Spec: fixture.FileSpec{Seed: 1}, Size: nil}}
	specs := []fixture.FileSpec{}
	sizes := []uint64{}

	drainPending(&pending, &specs, &sizes, 0, true)
	if len(sizes) != 1 || sizes[0] != 0 {
		t.Fatalf("sizes = %v, want [0] for a duplicate with no recorded size", sizes)
	}
}
