package fungraphics

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	adapter := NewSlogAdapter(slog.New(handler))

	tests := []struct {
		name string
		log  func(msg string, args ...any)
		want string
	}{
		{"debug", adapter.Debug, "level=DEBUG"},
		{"info", adapter.Info, "level=INFO"},
		{"warn", adapter.Warn, "level=WARN"},
		{"error", adapter.Error, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log(tt.name+" message", "x", 42)
			out := buf.String()
			if !strings.Contains(out, tt.want) || !strings.Contains(out, tt.name+" message") {
				t.Errorf("output = %q, want level %q and message", out, tt.want)
			}
			if !strings.Contains(out, "x=42") {
				t.Errorf("output = %q, missing key-value pair", out)
			}
		})
	}
}

func TestSlogAdapterWith(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil))).With("scene", "demo")
	adapter.Info("loaded")
	if !strings.Contains(buf.String(), "scene=demo") {
		t.Errorf("output = %q, missing With attribute", buf.String())
	}
}

func TestNewSlogAdapterNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter == nil {
		t.Fatal("NewSlogAdapter(nil) returned nil")
	}
	adapter.Debug("no panic")
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := JSONLogger(&buf, slog.LevelWarn)

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("Info below the level was written: %q", buf.String())
	}

	logger.Warn("drawing outside the frame", "op", "SetPixel")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "drawing outside the frame" || rec["op"] != "SetPixel" {
		t.Errorf("record = %v", rec)
	}
}

func TestDefaultLoggers(t *testing.T) {
	for name, l := range map[string]Logger{
		"default": DefaultLogger(),
		"debug":   DebugLogger(),
		"nop":     NopLogger(),
	} {
		if l == nil {
			t.Errorf("%s logger is nil", name)
		}
	}
	NopLogger().Error("discarded", "k", "v")
}
