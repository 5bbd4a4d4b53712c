package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" INFO ", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitWriter_JSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	l := InitWriter(&buf, "analyzer", "info", "json")
	l.Debug("hidden")
	l.Info("fetched", "symbol", "AAPL")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered: %s", out)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", out, err)
	}
	if rec["service"] != "analyzer" || rec["symbol"] != "AAPL" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestRunID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	if id := RunID(ctx); id != "" {
		t.Errorf("expected empty run id, got %q", id)
	}

	id := NewRunID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("run id %q is not a uuid: %v", id, err)
	}
	ctx = WithRunID(ctx, id)
	if got := RunID(ctx); got != id {
		t.Errorf("got %q, want %q", got, id)
	}
}

func TestFrom_AddsRunID(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	InitWriter(&buf, "analyzer", "info", "text")
	From(WithRunID(context.Background(), "run-1")).Info("done")
	if !strings.Contains(buf.String(), "run_id=run-1") {
		t.Errorf("expected run_id attribute, got %q", buf.String())
	}
}
