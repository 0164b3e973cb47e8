package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_WritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer

	log := newWithConsole(Config{Level: "info", Format: "json", Path: dir}, &console)
	batchLog := log.WithComponent("batch")
	batchLog.Info().Str("runId", "abc").Msg("run started")
	if err := log.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, s := range []string{`"component":"batch"`, `"runId":"abc"`, "run started"} {
		if !strings.Contains(string(data), s) {
			t.Errorf("log file missing %s: %s", s, data)
		}
	}
	if !strings.Contains(console.String(), "run started") {
		t.Errorf("console output missing message: %s", console.String())
	}
}

func TestNew_NoPathSkipsFile(t *testing.T) {
	var console bytes.Buffer
	log := newWithConsole(Config{Level: "debug", Format: "json"}, &console)
	if log.rotator != nil {
		t.Error("expected no rotator when Path is empty")
	}
	log.Debug().Msg("hello")
	if !strings.Contains(console.String(), "hello") {
		t.Errorf("expected debug message on console, got %q", console.String())
	}
}
