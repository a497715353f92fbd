package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		enable slog.Level
		off    slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug, slog.LevelDebug - 1},
		{"warn level", "WARN", slog.LevelWarn, slog.LevelInfo},
		{"default info", "", slog.LevelInfo, slog.LevelDebug},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.level)
			if !logger.Enabled(ctx, tt.enable) {
				t.Fatalf("expected level %s to be enabled", tt.enable)
			}
			if logger.Enabled(ctx, tt.off) {
				t.Fatalf("expected level %s to be disabled", tt.off)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("info", &buf).Info("client created", "client_id", 3)
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not json: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "client created" || rec["client_id"] != float64(3) {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestFromContext(t *testing.T) {
	base := Discard()
	ctx := context.Background()
	if FromContext(ctx, base) != base {
		t.Fatalf("expected fallback")
	}
	reqLogger := &Logger{Logger: base.With("request_id", "abc")}
	if FromContext(WithContext(ctx, reqLogger), base) != reqLogger {
		t.Fatalf("expected request logger")
	}
}
