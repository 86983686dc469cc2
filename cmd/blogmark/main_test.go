package main

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseGlobalFlags(t *testing.T) {
	opts, rest := parseGlobalFlags([]string{
		"--config", "/tmp/c.yaml",
		"--db=/tmp/d.db",
		"--user", "alice",
		"--format", "csv",
		"--top=3",
		"--blog", "7",
	})

	if opts.ConfigPath != "/tmp/c.yaml" {
		t.Errorf("config path = %q", opts.ConfigPath)
	}
	if opts.CLIDBPath != "/tmp/d.db" {
		t.Errorf("db path = %q", opts.CLIDBPath)
	}
	if opts.CLIUser != "alice" {
		t.Errorf("user = %q", opts.CLIUser)
	}
	if opts.CLIFormat != "csv" {
		t.Errorf("format = %q", opts.CLIFormat)
	}
	if opts.CLITopN != "3" {
		t.Errorf("top = %q", opts.CLITopN)
	}

	// Command-specific flags pass through untouched.
	if len(rest) != 2 || rest[0] != "--blog" || rest[1] != "7" {
		t.Errorf("rest = %v", rest)
	}
}

func TestParseGlobalFlagsEmpty(t *testing.T) {
	opts, rest := parseGlobalFlags(nil)
	if opts.CLIFormat != "" || opts.CLITopN != "" || len(rest) != 0 {
		t.Errorf("unexpected parse of empty args: %+v, %v", opts, rest)
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("one\ntwo"); got != "one" {
		t.Errorf("newline: got %q", got)
	}

	short := "short excerpt"
	if got := firstLine(short); got != short {
		t.Errorf("short: got %q", got)
	}

	long := strings.Repeat("x", 80)
	got := firstLine(long)
	if got != strings.Repeat("x", 72)+"…" {
		t.Errorf("ascii truncation: got %q", got)
	}

	// Multi-byte runes must never be split mid-sequence.
	wide := strings.Repeat("ブ", 80)
	got = firstLine(wide)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if got != strings.Repeat("ブ", 72)+"…" {
		t.Errorf("rune truncation: got %q", got)
	}
}
