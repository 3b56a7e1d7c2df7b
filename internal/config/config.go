// Package config loads the optional TOML defaults file and merges it with
// CLI flags, CLI winning on every key it sets explicitly.
package config

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/ivoronin/ftzzgo/internal/ftzzerr"
)

// File mirrors the TOML config schema. Every field is a pointer so the
// merge step can tell "absent from the file" apart from "explicitly zero".
type File struct {
	Files                *uint64  `toml:"files"`
	FilesExact           *bool    `toml:"files_exact"`
	TotalBytes           *uint64  `toml:"total_bytes"`
	FillByte             *uint8   `toml:"fill_byte"`
	BytesExact           *bool    `toml:"bytes_exact"`
	Exact                *bool    `toml:"exact"`
	MaxDepth             *int     `toml:"max_depth"`
	FtdRatio             *float64 `toml:"ftd_ratio"`
	AuditOutput          *string  `toml:"audit_output"`
	Seed                 *uint64  `toml:"seed"`
	DuplicatePercentage  *float64 `toml:"duplicate_percentage"`
	MaxDuplicatesPerFile *int     `toml:"max_duplicates_per_file"`
}

// Load reads and decodes path, rejecting unknown keys exactly as the schema
// (§6) requires.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ftzzerr.New(ftzzerr.ReadConfigError, err)
	}

	var f File
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, ftzzerr.New(ftzzerr.ParseConfigError, err)
	}
	return &f, nil
}

// MergeUint64 returns cliVal if the flag was explicitly set (cliSet) on the
// command line, else falls back to the config file's value (if any), else
// def.
func MergeUint64(cliVal uint64, cliSet bool, fileVal *uint64, def uint64) uint64 {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

// MergeBool mirrors MergeUint64 for boolean flags.
func MergeBool(cliVal bool, cliSet bool, fileVal *bool, def bool) bool {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

// MergeInt mirrors MergeUint64 for int flags.
func MergeInt(cliVal int, cliSet bool, fileVal *int, def int) int {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

// MergeFloat64 mirrors MergeUint64 for float flags.
func MergeFloat64(cliVal float64, cliSet bool, fileVal *float64, def float64) float64 {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

// MergeString mirrors MergeUint64 for string flags.
func MergeString(cliVal string, cliSet bool, fileVal *string, def string) string {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}
