// Package orchestrator wires the scheduler, generator selection, audit
// sink, and progress reporting into a single entry point for building a
// fixture tree.
package orchestrator

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ivoronin/ftzzgo/internal/audit"
	"github.com/ivoronin/ftzzgo/internal/distribution"
	"github.com/ivoronin/ftzzgo/internal/ftzzerr"
	"github.com/ivoronin/ftzzgo/internal/progress"
	"github.com/ivoronin/ftzzgo/internal/schedule"
	"github.com/ivoronin/ftzzgo/internal/seed"
)

// workerFanout scales the in-flight materialization cap with available
// CPUs: tasks spend most of their time blocked on filesystem syscalls, so a
// modest oversubscription keeps the pipeline full without unbounded growth.
const workerFanout = 4

// Config describes one generation run.
type Config struct {
	RootDir string

	NumFiles   uint64
	FilesExact bool

	TotalBytes uint64
	FillByte   *byte
	BytesExact bool

	MaxDepth int
	FtdRatio float64

	Seed uint64

	DuplicatePercentage  float64
	MaxDuplicatesPerFile int

	Permissions []uint16

	AuditOutputPath string
	ShowProgress    bool
}

// Result reports totals for a completed run.
type Result struct {
	FilesCreated int64
	DirsCreated  int64
	BytesWritten int64
	Elapsed      time.Duration
}

// Generate builds the fixture tree described by cfg under cfg.RootDir.
func Generate(ctx context.Context, cfg Config) (Result, error) {
	start := time.Now()

	if cfg.NumFiles == 0 {
		return Result{}, ftzzerr.New(ftzzerr.MissingNumFilesError, fmt.Errorf("files must be positive"))
	}

	ratio := cfg.FtdRatio
	if ratio <= 0 {
		ratio = float64(cfg.NumFiles) / 1000
	}
	if ratio <= 0 {
		ratio = 1
	}

	muFiles, muDirs := fileDirMeans(cfg.NumFiles, ratio, cfg.MaxDepth)
	numFilesDistr := distribution.TruncatedNormal(muFiles)
	numDirsDistr := distribution.TruncatedNormal(muDirs)

	dup := schedule.DuplicateConfig{
		Percentage:  cfg.DuplicatePercentage,
		MaxPerFile:  cfg.MaxDuplicatesPerFile,
		Permissions: cfg.Permissions,
	}

	var bytesCfg *schedule.GeneratorBytes
	if cfg.TotalBytes > 0 {
		meanSize := float64(cfg.TotalBytes) / float64(cfg.NumFiles)
		bytesCfg = &schedule.GeneratorBytes{
			SizeDistr: distribution.TruncatedNormal(meanSize),
			FillByte:  cfg.FillByte,
		}
	}

	generator := buildGenerator(cfg, numDirsDistr, bytesCfg, dup)

	sink, writeAudit := buildSink(cfg.AuditOutputPath)

	bar := progress.New(cfg.ShowProgress, -1)
	barStats := &runStats{startTime: start}

	runCfg := schedule.RunConfig{
		Root:          cfg.RootDir,
		MaxDepth:      cfg.MaxDepth,
		NumFilesDistr: numFilesDistr,
		Generator:     generator,
		MaxInFlight:   runtime.NumCPU() * workerFanout,
		Stream:        seed.NewStream(cfg.Seed),
		Audit:         sink,
		Hash:          cfg.AuditOutputPath != "",
		OnProgress: func(s schedule.Stats) {
			barStats.update(s)
			bar.Describe(barStats)
		},
	}

	stats, err := schedule.Run(ctx, runCfg)
	bar.Finish(barStats)
	if err != nil {
		return Result{}, ftzzerr.New(ftzzerr.GeneratorIOError, err)
	}

	if writeAudit != nil {
		sink.CalculateDirectorySizes()
		if err := writeAudit(cfg.AuditOutputPath); err != nil {
			return Result{}, ftzzerr.New(ftzzerr.GeneratorIOError, err)
		}
	}

	return Result{
		FilesCreated: stats.FilesCreated,
		DirsCreated:  stats.DirsCreated,
		BytesWritten: stats.BytesWritten,
		Elapsed:      time.Since(start),
	}, nil
}

func buildGenerator(cfg Config, numDirsDistr distribution.Normal, bytesCfg *schedule.GeneratorBytes, dup schedule.DuplicateConfig) schedule.Generator {
	if !cfg.FilesExact && !cfg.BytesExact {
		return &schedule.DynamicGenerator{
			NumDirsDistr: numDirsDistr,
			Bytes:        bytesCfg,
			Dup:          dup,
		}
	}

	var filesExact, bytesExact *uint64
	if cfg.FilesExact {
		v := cfg.NumFiles
		filesExact = &v
	}
	if cfg.BytesExact {
		v := cfg.TotalBytes
		bytesExact = &v
	}

	return &schedule.StaticGenerator{
		NumDirsDistr: numDirsDistr,
		Bytes:        bytesCfg,
		Dup:          dup,
		FilesExact:   filesExact,
		BytesExact:   bytesExact,
	}
}

// fileDirMeans derives the per-directory file-count and subdirectory-count
// sampling means from the target file count, files-to-directories ratio,
// and max depth: the branching factor b is picked so a geometric tree of
// depth maxDepth reaches roughly numFiles/ratio total directories, and the
// per-visit file-count mean is the share of numFiles each of the resulting
// (root included) directory visits should contribute on average.
func fileDirMeans(numFiles uint64, ratio float64, maxDepth int) (muFiles, muDirs float64) {
	totalDirsTarget := float64(numFiles) / ratio
	if maxDepth <= 0 || totalDirsTarget <= 1 {
		return float64(numFiles), 0
	}

	b := math.Pow(totalDirsTarget, 1/float64(maxDepth))

	sum := 1.0
	term := 1.0
	for d := 0; d < maxDepth; d++ {
		term *= b
		sum += term
	}

	return float64(numFiles) / sum, b
}

func buildSink(path string) (audit.Sink, func(string) error) {
	if path == "" {
		return audit.NullSink{}, nil
	}
	csv := audit.NewCSVSink()
	return csv, csv.WriteFile
}

// runStats is the progress bar's fmt.Stringer, a snapshot-and-format
// counter like the ones used elsewhere for long-running batch operations.
type runStats struct {
	files     int64
	dirs      int64
	bytes     int64
	startTime time.Time
}

func (s *runStats) update(st schedule.Stats) {
	s.files = st.FilesCreated
	s.dirs = st.DirsCreated
	s.bytes = st.BytesWritten
}

func (s *runStats) String() string {
	return fmt.Sprintf("Created %d files, %d dirs (%s) in %.1fs",
		s.files, s.dirs, humanize.IBytes(uint64(s.bytes)), time.Since(s.startTime).Seconds())
}
