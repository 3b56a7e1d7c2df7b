package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// parseSize parses a human-readable byte count, e.g. "100", "1K", "10MiB".
func parseSize(s string) (uint64, error) {
	return humanize.ParseBytes(s)
}

// parseFillByte parses a single byte value given in decimal, 0x-hex, or
// 0-octal form.
func parseFillByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("fill byte %q: %w", s, err)
	}
	return byte(v), nil
}

// parsePermissions parses a comma-separated palette of octal file modes,
// e.g. "600,644,755".
func parsePermissions(s string) ([]uint16, error) {
	fields := strings.Split(s, ",")
	modes := make([]uint16, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseUint(f, 8, 16)
		if err != nil {
			return nil, fmt.Errorf("permission mode %q: %w", f, err)
		}
		modes = append(modes, uint16(v))
	}
	return modes, nil
}
