package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/zapponejosh/litcal-webcalendar/internal/config"
)

func TestSetup_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := Setup(&config.Config{LogLevel: "warn", LogFormat: "json"}, &buf)

	l.Info("dropped")
	Component(l, "refresh").Warn("kept", "year", 2025)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["msg"] != "kept" || rec["component"] != "refresh" || rec["year"] != float64(2025) {
		t.Errorf("record = %v", rec)
	}
}

func TestFromContext_RequestID(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup(&config.Config{LogLevel: "info", LogFormat: "text"}, &buf)

	ctx := WithRequestID(context.Background(), "abc123")
	if got := RequestID(ctx); got != "abc123" {
		t.Errorf("RequestID = %q", got)
	}
	Warn(ctx, "hello")
	if !strings.Contains(buf.String(), "request_id=abc123") {
		t.Errorf("output %q missing request id", buf.String())
	}
	if RequestID(context.Background()) != "" {
		t.Error("RequestID on empty context should be empty")
	}
}
