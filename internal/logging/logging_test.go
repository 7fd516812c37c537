package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Output: &buf})

	log.Debug("quiet")
	log.Info("quiet")
	log.Warn("loud")
	log.Error("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("filtered levels leaked: %q", out)
	}
	if strings.Count(out, "loud") != 2 {
		t.Errorf("expected 2 messages, got: %q", out)
	}
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Output: &buf, Prefix: "test"})

	log.Info("value is %d", 42)

	out := buf.String()
	if !strings.Contains(out, "[INFO] test: value is 42") {
		t.Errorf("unexpected format: %q", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelInfo, Output: &buf}).WithComponent("stack")

	log.Info("hello")

	if !strings.Contains(buf.String(), "component=stack") {
		t.Errorf("field missing: %q", buf.String())
	}
}

func TestLoggerWithFieldIsolation(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: LevelInfo, Output: &buf})
	derived := base.WithField("k", "v")

	base.Info("plain")
	if strings.Contains(buf.String(), "k=v") {
		t.Error("field leaked into parent logger")
	}

	buf.Reset()
	derived.Info("tagged")
	if !strings.Contains(buf.String(), "k=v") {
		t.Error("derived logger lost its field")
	}
}

func TestNullLogger(t *testing.T) {
	// Must not panic or emit anywhere
	Null.Debug("a")
	Null.Info("b")
	Null.Warn("c")
	Null.Error("d")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelError, Output: &buf})

	log.Info("dropped")
	log.SetLevel(LevelDebug)
	log.Info("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "kept") {
		t.Errorf("SetLevel not applied: %q", out)
	}
}
