package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/wonny/aegis-intraday/pkg/config"
)

// decodeLines parses every JSON log line written to buf
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to parse log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNewTo(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel string
		wantLines int
	}{
		{"debug emits all", "debug", "debug", 4},
		{"info drops debug", "info", "info", 3},
		{"warn keeps warn and error", "warn", "warn", 2},
		{"error keeps error only", "error", "error", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewTo(&buf, &config.Config{Env: "test", LogLevel: tt.level, LogFormat: "json"})

			if log.Level() != tt.wantLevel {
				t.Errorf("Level() = %q, want %q", log.Level(), tt.wantLevel)
			}

			log.Debug("d")
			log.Info("i")
			log.Warn("w")
			log.Error("e")

			entries := decodeLines(t, &buf)
			if len(entries) != tt.wantLines {
				t.Fatalf("Expected %d lines, got %d", tt.wantLines, len(entries))
			}
			if entries[0]["service"] != serviceName {
				t.Errorf("Expected service=%s, got %v", serviceName, entries[0]["service"])
			}
			if entries[0]["env"] != "test" {
				t.Errorf("Expected env=test, got %v", entries[0]["env"])
			}
		})
	}
}

func TestNewTo_ConsoleFormat(t *testing.T) {
	for _, format := range []string{"console", "pretty", "TEXT"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewTo(&buf, &config.Config{LogLevel: "info", LogFormat: format})
			log.Info("session resolved")

			out := buf.String()
			if !strings.Contains(out, "session resolved") {
				t.Errorf("Expected message in output, got: %s", out)
			}
			if strings.HasPrefix(strings.TrimSpace(out), "{") {
				t.Errorf("Expected console output, got JSON: %s", out)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormattedMethods(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug")

	log.Debugf("probe %s", "TCS.NS")
	log.Infof("validated %d/%d", 8, 10)
	log.Warnf("fetch failed: %s", "timeout")
	log.Errorf("scan job: %v", errors.New("boom"))

	want := []struct{ level, msg string }{
		{"debug", "probe TCS.NS"},
		{"info", "validated 8/10"},
		{"warn", "fetch failed: timeout"},
		{"error", "scan job: boom"},
	}

	entries := decodeLines(t, &buf)
	if len(entries) != len(want) {
		t.Fatalf("Expected %d lines, got %d", len(want), len(entries))
	}
	for i, w := range want {
		if entries[i]["level"] != w.level || entries[i]["message"] != w.msg {
			t.Errorf("line %d = %v/%v, want %s/%s", i, entries[i]["level"], entries[i]["message"], w.level, w.msg)
		}
	}
}

func TestChildLoggers(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	log.WithModule("pipeline").
		WithRun("run-1").
		WithFields(map[string]interface{}{"ticker": "INFY.NS", "bars": 375}).
		WithError(errors.New("provider timeout")).
		Warn("Ticker skipped")

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected one line, got %d", len(entries))
	}

	e := entries[0]
	checks := map[string]interface{}{
		"module":  "pipeline",
		"run_id":  "run-1",
		"ticker":  "INFY.NS",
		"bars":    float64(375),
		"error":   "provider timeout",
		"message": "Ticker skipped",
	}
	for k, want := range checks {
		if e[k] != want {
			t.Errorf("%s = %v, want %v", k, e[k], want)
		}
	}
}

func TestWithErrorNil(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	if log.WithError(nil) != log {
		t.Error("Expected WithError(nil) to return the same logger")
	}

	log.WithField("k", "v").Info("no error")
	entries := decodeLines(t, &buf)
	if _, ok := entries[0]["error"]; ok {
		t.Error("Expected no error field")
	}
}

func TestLevelIsPerLogger(t *testing.T) {
	var quiet, loud bytes.Buffer
	NewWithWriter(&quiet, "error").Info("dropped")
	NewWithWriter(&loud, "debug").Debug("kept")

	if quiet.Len() != 0 {
		t.Errorf("Expected no output at error level, got %q", quiet.String())
	}
	if !strings.Contains(loud.String(), "kept") {
		t.Errorf("Expected debug line, got %q", loud.String())
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	log.WithModule("x").WithRun("r").WithError(errors.New("x")).Error("ignored")
	log.Infof("ignored %d", 1)
}
