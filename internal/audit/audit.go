// Package audit defines the sink contract the generation engine reports
// file and directory events to, plus two concrete sinks: a CSV writer for
// the CLI's --audit-output flag, and a no-op sink for when auditing is
// disabled. The core never depends on either concrete type, only on Sink.
package audit

import (
	"path/filepath"
	"sync"
)

// EntryType distinguishes a file row from a directory row in the audit
// trail.
type EntryType int

const (
	EntryFile EntryType = iota
	EntryDirectory
)

// Entry is one row of the audit trail.
type Entry struct {
	Path        string
	Type        EntryType
	Size        int64
	Hash        *uint64
	Permissions *uint16
	Owner       *string
	IsDuplicate bool
}

// Sink is the interface the core invokes. Implementations must serialize
// concurrent calls internally — the scheduler fans out file and directory
// events from multiple in-flight materialization workers with no ordering
// guarantee between them.
type Sink interface {
	AddFile(path string, size int64, hash *uint64, isDuplicate bool, mode *uint16)
	AddDirectory(path string, mode *uint16)
	// CalculateDirectorySizes rolls up cumulative file-size totals onto
	// every directory entry, run once after the walk completes.
	CalculateDirectorySizes()
}

// NullSink discards every event. Used when --audit-output is unset.
type NullSink struct{}

func (NullSink) AddFile(string, int64, *uint64, bool, *uint16) {}
func (NullSink) AddDirectory(string, *uint16)                  {}
func (NullSink) CalculateDirectorySizes()                      {}

// MemorySink accumulates entries in memory behind a mutex, the shape both
// CSVSink and tests build on.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) AddFile(path string, size int64, hash *uint64, isDuplicate bool, mode *uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{
		Path:        path,
		Type:        EntryFile,
		Size:        size,
		Hash:        hash,
		Permissions: mode,
		IsDuplicate: isDuplicate,
	})
}

func (s *MemorySink) AddDirectory(path string, mode *uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{
		Path:        path,
		Type:        EntryDirectory,
		Permissions: mode,
	})
}

// CalculateDirectorySizes makes every directory entry's Size equal the sum
// of all file sizes nested beneath it, at any depth.
func (s *MemorySink) CalculateDirectorySizes() {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirSizes := make(map[string]int64)
	for _, e := range s.entries {
		if e.Type != EntryFile {
			continue
		}
		for parent, prev := filepath.Dir(e.Path), e.Path; parent != prev; parent, prev = filepath.Dir(parent), parent {
			dirSizes[parent] += e.Size
		}
	}

	for i := range s.entries {
		if s.entries[i].Type == EntryDirectory {
			if size, ok := dirSizes[s.entries[i].Path]; ok {
				s.entries[i].Size = size
			}
		}
	}
}

// Entries returns a snapshot of the accumulated rows.
func (s *MemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
