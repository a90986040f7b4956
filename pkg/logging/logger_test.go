package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeEntry(t *testing.T, line []byte) logEntry {
	t.Helper()
	var entry logEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v\n%s", err, line)
	}
	return entry
}

func TestJSONLoggerWritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("simulation complete",
		City("Chicago, Illinois, USA"),
		Scenario("Random Failure"),
		Severity(0.2),
		Pairs(40))

	entry := decodeEntry(t, buf.Bytes())
	if entry.Level != "INFO" {
		t.Errorf("level = %q", entry.Level)
	}
	if entry.Message != "simulation complete" {
		t.Errorf("msg = %q", entry.Message)
	}
	if entry.Fields["city"] != "Chicago, Illinois, USA" {
		t.Errorf("city field = %v", entry.Fields["city"])
	}
	if entry.Fields["severity"] != 0.2 {
		t.Errorf("severity field = %v", entry.Fields["severity"])
	}
	if _, err := time.Parse(time.RFC3339Nano, entry.Time); err != nil {
		t.Errorf("timestamp %q not RFC3339: %v", entry.Time, err)
	}
}

func TestJSONLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown")

	lines := strings.Count(buf.String(), "\n")
	if lines != 2 {
		t.Errorf("got %d entries, want 2\n%s", lines, buf.String())
	}
}

func TestWithAttachesFieldsToEveryEntry(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel).With(Component("api"))

	logger.Info("first")
	logger.Info("second", String("extra", "x"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d entries", len(lines))
	}
	for _, line := range lines {
		entry := decodeEntry(t, []byte(line))
		if entry.Fields["component"] != "api" {
			t.Errorf("component field = %v in %s", entry.Fields["component"], line)
		}
	}
	second := decodeEntry(t, []byte(lines[1]))
	if second.Fields["extra"] != "x" {
		t.Errorf("extra field = %v", second.Fields["extra"])
	}
}

func TestErrorField(t *testing.T) {
	f := Error(errors.New("boom"))
	if f.Key != "error" || f.Value != "boom" {
		t.Errorf("Error field = %+v", f)
	}
	f = Error(nil)
	if f.Value != nil {
		t.Errorf("nil error field = %+v", f)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"nonsense", InfoLevel},
		{"", InfoLevel},
	}
	for _, c := range cases {
		if got := ParseLevel(c.raw); got != c.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}
