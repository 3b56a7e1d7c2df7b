// Package fixture implements the per-directory materializer: given a batch
// of file specs and a subdirectory count for one target directory, it
// creates the subdirectories, then the files, recovering locally from a
// "parent not found" race on the first file of the batch.
package fixture

import (
	"errors"
	"fmt"
	"os"

	"github.com/ivoronin/ftzzgo/internal/audit"
	"github.com/ivoronin/ftzzgo/internal/contents"
	"github.com/ivoronin/ftzzgo/internal/pathbuf"
)

// FileSpec identifies one file to create. Two specs sharing Seed always
// produce byte-identical content; IsDuplicate is audit metadata only and
// never changes what bytes get written.
type FileSpec struct {
	Seed        uint64
	IsDuplicate bool
	Mode        *uint16
}

// PendingDuplicate is a duplicate deferred for placement in a later batch,
// possibly in a different directory. Size is set only when bytes-exact
// mode is tracking per-file sizes.
type PendingDuplicate struct {
	Spec FileSpec
	Size *uint64
}

// Default permissions recorded on audit rows when no palette was
// configured. These are audit-display defaults only, mirroring the
// original's audit.rs fallbacks — independent of the mode the content
// writer actually applies on disk (contents.defaultFileMode, 0o664).
const (
	defaultAuditFileMode uint16 = 0o644
	defaultAuditDirMode  uint16 = 0o755
)

func auditMode(mode *uint16, def uint16) *uint16 {
	if mode != nil {
		return mode
	}
	return &def
}

// TaskParams describes one directory's batch of work.
type TaskParams struct {
	TargetDir  *pathbuf.Buf
	FileSpecs  []FileSpec
	NumDirs    int
	FileOffset uint64
	Writer     contents.Writer
	Audit      audit.Sink // nil-able; callers should pass audit.NullSink{} instead of nil
	Hash       bool       // whether to ask the writer for a content hash
}

// TaskOutcome reports what one Materialize call did, plus the pooled
// resources to hand back to the scheduler's pools.
type TaskOutcome struct {
	FilesCreated  int64
	DirsCreated   int
	BytesWritten  int64
	ReturnedPath  *pathbuf.Buf
	ReturnedSizes []uint64
}

// Materialize creates p's subdirectories then its files against the
// filesystem, in that order: directories a task creates are always visible
// before any of its sibling files land.
func Materialize(p TaskParams) (TaskOutcome, error) {
	sink := p.Audit
	if sink == nil {
		sink = audit.NullSink{}
	}

	if err := createDirs(p.TargetDir, p.NumDirs, sink); err != nil {
		return TaskOutcome{}, err
	}

	bytesWritten, err := createFiles(p.TargetDir, p.FileSpecs, p.FileOffset, p.Writer, sink, p.Hash)
	if err != nil {
		return TaskOutcome{}, err
	}

	return TaskOutcome{
		FilesCreated:  int64(len(p.FileSpecs)),
		DirsCreated:   p.NumDirs,
		BytesWritten:  bytesWritten,
		ReturnedPath:  p.TargetDir,
		ReturnedSizes: p.Writer.SizeVectorReturn(),
	}, nil
}

func createDirs(dir *pathbuf.Buf, numDirs int, sink audit.Sink) error {
	for i := 0; i < numDirs; i++ {
		name := pathbuf.DirName(i)
		dir.Push(name)
		full := dir.String()
		if err := os.MkdirAll(full, 0o755); err != nil {
			dir.Pop()
			return fmt.Errorf("create directory %q: %w", full, err)
		}
		dirMode := defaultAuditDirMode
		sink.AddDirectory(full, &dirMode)
		dir.Pop()
	}
	return nil
}

func createFiles(dir *pathbuf.Buf, specs []FileSpec, offset uint64, writer contents.Writer, sink audit.Sink, hash bool) (int64, error) {
	var bytesWritten int64
	if len(specs) == 0 {
		return 0, nil
	}

	start := 0

	// First file: recoverable from a "parent not found" race with a
	// sibling directory-creation task that hasn't materialized TargetDir
	// yet. On that race we create the parent and leave start at 0, so the
	// loop below creates the first file along with the rest.
	name := pathbuf.FileName(0, offset)
	dir.Push(name)
	full := dir.String()
	written, h, err := writeOne(full, 0, specs[0], writer, hash)
	if err == nil {
		bytesWritten += written
		sink.AddFile(full, written, h, specs[0].IsDuplicate, auditMode(specs[0].Mode, defaultAuditFileMode))
		start = 1
		dir.Pop()
	} else if errors.Is(err, os.ErrNotExist) {
		dir.Pop()
		if mkErr := os.MkdirAll(dir.String(), 0o755); mkErr != nil {
			return bytesWritten, fmt.Errorf("recover parent directory %q: %w", dir.String(), mkErr)
		}
		// start stays 0: the loop below creates the first file again now
		// that its parent exists, then the rest of the batch.
	} else {
		dir.Pop()
		return bytesWritten, fmt.Errorf("create file %q: %w", full, err)
	}

	for i := start; i < len(specs); i++ {
		name := pathbuf.FileName(uint64(i), offset)
		dir.Push(name)
		full := dir.String()
		written, h, err := writeOne(full, i, specs[i], writer, hash)
		if err != nil {
			dir.Pop()
			return bytesWritten, fmt.Errorf("create file %q: %w", full, err)
		}
		bytesWritten += written
		sink.AddFile(full, written, h, specs[i].IsDuplicate, auditMode(specs[i].Mode, defaultAuditFileMode))
		dir.Pop()
	}

	return bytesWritten, nil
}

func writeOne(path string, fileNum int, spec FileSpec, writer contents.Writer, hash bool) (int64, *uint64, error) {
	var hashSeed *uint64
	if hash {
		zero := uint64(0)
		hashSeed = &zero
	}
	return writer.Create(path, fileNum, spec.Seed, spec.Mode, hashSeed)
}
