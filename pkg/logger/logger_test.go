package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", &buf)

	l.Info("should be filtered")
	l.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Fatalf("info message logged at warn level: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("warn message missing: %s", out)
	}
}

func TestNewEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", &buf)

	l.Info("hello", "key", "value")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "hello" {
		t.Fatalf("expected msg hello, got %v", record["msg"])
	}
	if record["key"] != "value" {
		t.Fatalf("expected key=value attribute, got %v", record["key"])
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"debug", "DEBUG"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
		{"", "INFO"},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in).String(); got != tc.want {
			t.Fatalf("parseLevel(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestNewTextOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewText("info", &buf)

	l.Info("plain text", "n", 3)

	out := buf.String()
	if !strings.Contains(out, "msg=\"plain text\"") {
		t.Fatalf("expected text handler output, got %q", out)
	}
}
