package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every entry is a JSON object with level, timestamp and message", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := NewJSON(&buf, zapcore.DebugLevel)

			switch level {
			case "debug":
				logger.Debug(message)
			case "info":
				logger.Info(message)
			case "warn":
				logger.Warn(message)
			default:
				logger.Error(message)
			}
			logger.Sync()

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Logf("not JSON: %q", buf.String())
				return false
			}

			for _, key := range []string{"level", "timestamp", "message"} {
				if _, ok := entry[key]; !ok {
					t.Logf("missing key %s", key)
					return false
				}
			}

			return entry["message"] == message && entry["level"] == level
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ErrorLogsIncludeContext(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("error entries keep their fields and a stack trace", prop.ForAll(
		func(message string, orderID string) bool {
			var buf bytes.Buffer
			logger := NewJSON(&buf, zapcore.DebugLevel)

			logger.Error(message, zap.String("order_id", orderID))
			logger.Sync()

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}

			if entry["order_id"] != orderID {
				return false
			}
			_, hasStack := entry["stacktrace"]
			return hasStack
		},
		gen.AnyString(),
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNewJSON_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSON(&buf, zapcore.WarnLevel)

	logger.Info("dropped")
	logger.Sync()

	if buf.Len() != 0 {
		t.Fatalf("expected info entry to be filtered, got %q", buf.String())
	}
}

func TestNew_RespectsLevelOverride(t *testing.T) {
	logger, err := New("production", "warn")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled when LOG_LEVEL=warn")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled when LOG_LEVEL=warn")
	}
}

func TestNew_DevelopmentDefaultsToDebug(t *testing.T) {
	logger, err := New("development", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("development logger should log debug entries")
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	if _, err := New("production", "loud"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
