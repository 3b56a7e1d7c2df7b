package main

import "testing"

func TestParseSize(t *testing.T) {
	cases := map[string]uint64{
		"100":   100,
		"1K":    1000,
		"1KiB":  1024,
		"10MiB": 10 * 1024 * 1024,
	}
	for in, want := range cases {
		got, err := parseSize(in)
		if err != nil {
			t.Errorf("parseSize(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parseSize(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseSizeInvalid(t *testing.T) {
	if _, err := parseSize("not-a-size"); err == nil {
		t.Error("parseSize(\"not-a-size\") returned no error")
	}
}

func TestParseFillByte(t *testing.T) {
	cases := map[string]byte{
		"0":    0,
		"255":  255,
		"0x41": 0x41,
		"0o17": 0o17,
	}
	for in, want := range cases {
		got, err := parseFillByte(in)
		if err != nil {
			t.Errorf("parseFillByte(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parseFillByte(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseFillByteOutOfRange(t *testing.T) {
	if _, err := parseFillByte("256"); err == nil {
		t.Error("parseFillByte(\"256\") returned no error")
	}
}

func TestParsePermissions(t *testing.T) {
	got, err := parsePermissions("600,644,755")
	if err != nil {
		t.Fatalf("parsePermissions() error: %v", err)
	}
	want := []uint16{0o600, 0o644, 0o755}
	if len(got) != len(want) {
		t.Fatalf("parsePermissions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parsePermissions()[%d] = %o, want %o", i, got[i], want[i])
		}
	}
}

func TestParsePermissionsSkipsBlankFields(t *testing.T) {
	got, err := parsePermissions("600, ,644")
	if err != nil {
		t.Fatalf("parsePermissions() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("parsePermissions() = %v, want 2 entries", got)
	}
}

func TestParsePermissionsInvalid(t *testing.T) {
	if _, err := parsePermissions("999"); err == nil {
		t.Error("parsePermissions(\"999\") returned no error")
	}
}
