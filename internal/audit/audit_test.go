package audit

import (
	"os"
	"strings"
	"testing"
)

func TestMemorySinkRecordsEntriesInOrder(t *testing.T) {
	s := NewMemorySink()
	mode := uint16(0o644)
	hash := uint64(0xdeadbeef)

	s.AddDirectory("/root/a", nil)
	s.AddFile("/root/a/f", 10, &hash, false, &mode)
	s.AddFile("/root/a/g", 0, nil, true, nil)

	entries := s.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if entries[0].Type != EntryDirectory || entries[0].Path != "/root/a" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Size != 10 || entries[1].Hash == nil || *entries[1].Hash != hash {
		t.Errorf("entries[1] = %+v", entries[1])
	}
	if !entries[2].IsDuplicate {
		t.Errorf("entries[2].IsDuplicate = false, want true")
	}
}

func TestCalculateDirectorySizesRollsUpNestedFiles(t *testing.T) {
	s := NewMemorySink()
	s.AddDirectory("/root", nil)
	s.AddDirectory("/root/sub", nil)
	s.AddFile("/root/sub/a", 100, nil, false, nil)
	s.AddFile("/root/b", 5, nil, false, nil)

	s.CalculateDirectorySizes()

	entries := s.Entries()
	var rootSize, subSize int64
	for _, e := range entries {
		switch e.Path {
		case "/root":
			rootSize = e.Size
		case "/root/sub":
			subSize = e.Size
		}
	}
	if subSize != 100 {
		t.Errorf("/root/sub size = %d, want 100", subSize)
	}
	if rootSize != 105 {
		t.Errorf("/root size = %d, want 105 (100 + 5)", rootSize)
	}
}

func TestNullSinkIsNoOp(t *testing.T) {
	var s NullSink
	s.AddFile("x", 1, nil, false, nil)
	s.AddDirectory("y", nil)
	s.CalculateDirectorySizes()
}

func TestCSVSinkWriteFile(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVSink()
	mode := uint16(0o600)
	hash := uint64(1)
	s.AddFile("/root/f", 12, &hash, true, &mode)

	path := dir + "/audit.csv"
	if err := s.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "path,type,size,hash,permissions,owner,is_duplicate" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "true") {
		t.Errorf("row missing is_duplicate=true: %q", lines[1])
	}
}
