package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestGroupDigits(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{8421775, "8,421,775"},
		{-1234567, "-1,234,567"},
	}
	for _, tc := range cases {
		if got := groupDigits(tc.in); got != tc.want {
			t.Errorf("groupDigits(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("unexpected %q", got)
	}
	if got := truncate("a very long client name", 10); got != "a very ..." {
		t.Errorf("unexpected %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc" {
		t.Errorf("unexpected %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := percent(12, 57); got != "21.1%" {
		t.Errorf("unexpected %q", got)
	}
	if got := percent(1, 0); got != "0.0%" {
		t.Errorf("unexpected %q", got)
	}
}

func TestWriteCountTableOrdering(t *testing.T) {
	var buf bytes.Buffer
	writeCountTable(&buf, map[string]int{"Geth": 45, "BeraGeth": 12, "reth": 12}, 69, 28)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 rows, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "Geth") || !strings.Contains(lines[0], "45") {
		t.Fatalf("expected Geth first, got %q", lines[0])
	}
	// Equal counts tie-break alphabetically.
	if !strings.Contains(lines[1], "BeraGeth") {
		t.Fatalf("expected BeraGeth second, got %q", lines[1])
	}
}
