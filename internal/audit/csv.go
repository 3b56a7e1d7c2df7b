package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// CSVSink is a MemorySink that can flush itself to a CSV file with the
// header row: path,type,size,hash,permissions,owner,is_duplicate.
type CSVSink struct {
	*MemorySink
}

// NewCSVSink creates an empty CSVSink.
func NewCSVSink() *CSVSink {
	return &CSVSink{MemorySink: NewMemorySink()}
}

// WriteFile writes the accumulated entries to path as CSV, one row per
// file or directory event, in the order they were recorded.
func (s *CSVSink) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audit output %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"path", "type", "size", "hash", "permissions", "owner", "is_duplicate"}); err != nil {
		return fmt.Errorf("write audit header: %w", err)
	}

	for _, e := range s.Entries() {
		row := []string{
			e.Path,
			entryTypeString(e.Type),
			strconv.FormatInt(e.Size, 10),
			hashString(e.Hash),
			modeString(e.Permissions),
			ownerString(e.Owner),
			strconv.FormatBool(e.IsDuplicate),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write audit row for %q: %w", e.Path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush audit output: %w", err)
	}
	return nil
}

func entryTypeString(t EntryType) string {
	if t == EntryDirectory {
		return "directory"
	}
	return "file"
}

func hashString(h *uint64) string {
	if h == nil {
		return ""
	}
	return fmt.Sprintf("%016x", *h)
}

func modeString(m *uint16) string {
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%o", *m)
}

func ownerString(o *string) string {
	if o == nil {
		return ""
	}
	return *o
}
