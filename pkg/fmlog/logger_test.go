package fmlog

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestLogger_ComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(slog.LevelInfo, &buf).Component("redis")

	log.Warn("error event", "err", "connection refused")

	got := buf.String()
	want := "WARN  [redis] error event err=connection refused\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(slog.LevelWarn, &buf)

	log.Info("hidden")
	log.Debug("hidden")
	log.Error("shown", "key", "a", "n", 2)

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("info/debug lines leaked: %q", got)
	}
	if got != "ERROR shown key=a, n=2\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestLogger_GroupAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(slog.LevelDebug, &buf)

	log.WithGroup("db").With("host", "localhost").Debug("dial", "port", 27017)

	got := buf.String()
	if got != "DEBUG dial db.host=localhost, db.port=27017\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_FatalExits(t *testing.T) {
	var codes []int
	exit = func(code int) { codes = append(codes, code) }
	t.Cleanup(func() { exit = os.Exit })

	var buf bytes.Buffer
	log := NewLogger(slog.LevelInfo, &buf).Component("migrate")

	log.Fatal("failed to connect to database", "host", "localhost")
	log.Fatalf("failed to migrate: %v", "relation exists")

	want := "ERROR [migrate] failed to connect to database host=localhost\n" +
		"ERROR [migrate] failed to migrate: relation exists\n"
	if got := buf.String(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if len(codes) != 2 || codes[0] != 1 || codes[1] != 1 {
		t.Errorf("expected two exits with code 1, got %v", codes)
	}
}
