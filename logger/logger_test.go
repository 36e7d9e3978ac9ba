package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "test-svc", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("failed to decode log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").Info("hello", Fields("count", 2))

	m := decodeLine(t, &buf)
	if m["message"] != "hello" {
		t.Errorf("expected message 'hello', got %v", m["message"])
	}
	if m["service"] != "test-svc" {
		t.Errorf("expected service field, got %v", m["service"])
	}
	if m["count"] != float64(2) {
		t.Errorf("expected count=2, got %v", m["count"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "warn").Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %q", buf.String())
	}
}

func TestNewInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "invalid-level")
	l.Debug("hidden")
	l.Info("shown")
	if !strings.Contains(buf.String(), "shown") || strings.Contains(buf.String(), "hidden") {
		t.Errorf("expected fallback to info level, got %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithComponent("session").Info("x")
	if decodeLine(t, &buf)[FieldComponent] != "session" {
		t.Error("expected component field")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").
		WithFields(Fields(FieldMbox, "home")).
		WithError(errors.New("boom")).
		Warn("failed")

	m := decodeLine(t, &buf)
	if m[FieldMbox] != "home" {
		t.Errorf("expected mbox field, got %v", m[FieldMbox])
	}
	if m["error"] != "boom" {
		t.Errorf("expected error field, got %v", m["error"])
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Error("nothing happens")
}

func TestOrGlobal(t *testing.T) {
	var buf bytes.Buffer
	l := OrGlobal(jsonLogger(&buf, "info"), "cache")
	l.Info("x")
	if decodeLine(t, &buf)[FieldComponent] != "cache" {
		t.Error("expected component tag from OrGlobal")
	}

	if OrGlobal(nil, "cache") == nil {
		t.Error("expected global fallback")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(jsonLogger(&buf, "debug"))
	Debug("global debug")
	if !strings.Contains(buf.String(), "global debug") {
		t.Errorf("expected package-level helper to use the global logger, got %q", buf.String())
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stderr" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: "json"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "svc", &buf).Info("console line")
	if !strings.Contains(buf.String(), "[INF]") {
		t.Errorf("expected console level tag, got %q", buf.String())
	}
}

func TestFieldHelpers(t *testing.T) {
	f := Fields("a", 1, "b")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("unexpected fields %v", f)
	}

	ef := ErrorFields("load", errors.New("x"))
	if ef[FieldOperation] != "load" || ef[FieldError] != "x" {
		t.Errorf("unexpected error fields %v", ef)
	}

	df := DurationFields("load", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration fields %v", df)
	}
}
