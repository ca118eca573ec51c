package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", "text", &buf)

	logger.Info("connected", KeyAddress, "127.0.0.1:4924")

	output := buf.String()
	if !strings.Contains(output, "connected") {
		t.Errorf("expected output to contain 'connected', got: %s", output)
	}
	if !strings.Contains(output, "address=127.0.0.1:4924") {
		t.Errorf("expected output to contain address attribute, got: %s", output)
	}
}

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", "json", &buf)

	logger.Info("connected", KeyAddress, "127.0.0.1:4924")

	output := buf.String()
	if !strings.Contains(output, `"msg":"connected"`) {
		t.Errorf("expected JSON output with msg field, got: %s", output)
	}
	if !strings.Contains(output, `"address":"127.0.0.1:4924"`) {
		t.Errorf("expected JSON output with address field, got: %s", output)
	}
}

func TestNewLoggerLevelFiltering(t *testing.T) {
	tests := []struct {
		name         string
		configLevel  string
		logLevel     slog.Level
		shouldAppear bool
	}{
		{"debug at debug level", "debug", slog.LevelDebug, true},
		{"debug at info level", "info", slog.LevelDebug, false},
		{"info at info level", "info", slog.LevelInfo, true},
		{"info at warn level", "warn", slog.LevelInfo, false},
		{"warn at warn level", "warn", slog.LevelWarn, true},
		{"warn at error level", "error", slog.LevelWarn, false},
		{"error at error level", "error", slog.LevelError, true},
		{"unknown level defaults to info", "bogus", slog.LevelDebug, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(tc.configLevel, "text", &buf)

			logger.Log(context.Background(), tc.logLevel, "probe")

			if got := strings.Contains(buf.String(), "probe"); got != tc.shouldAppear {
				t.Errorf("level %s under config %q: appeared=%v, want %v",
					tc.logLevel, tc.configLevel, got, tc.shouldAppear)
			}
		})
	}
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	// Must not panic and must not write anywhere observable.
	logger.Error("discarded", KeyError, "nothing")
}
