package utils

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithLevel(&buf, "warn")
	logger.Printf("hidden %d", 1)
	logger.Warnf("shown %d", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("expected warn line, got %q", out)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Printf("nothing")
	logger.Errorf("nothing")
	if logger.With("k", "v") != nil {
		t.Fatalf("expected nil logger from nil receiver")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseDate(t *testing.T) {
	if _, ok, err := ParseDate(""); ok || err != nil {
		t.Fatalf("empty date should be absent without error")
	}
	d, ok, err := ParseDate("2024-03-05")
	if err != nil || !ok {
		t.Fatalf("parse: ok=%v err=%v", ok, err)
	}
	if FormatDate(d) != "2024-03-05" {
		t.Fatalf("round trip mismatch: %s", FormatDate(d))
	}
	if _, _, err := ParseDate("05/03/2024"); err == nil {
		t.Fatalf("expected error for bad layout")
	}
}
