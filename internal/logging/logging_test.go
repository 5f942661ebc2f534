package logging

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-sieve/internal/config"
)

func TestNewLoggerLevel(t *testing.T) {
	logger := NewLogger(config.LoggingConfig{Level: "debug"})
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	logger := NewLogger(config.LoggingConfig{Level: "nonsense"})
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected fallback to info, got %v", logger.GetLevel())
	}
}

func TestRunEntryHasRunID(t *testing.T) {
	logger := NewLogger(config.LoggingConfig{Level: "info"})

	entry := RunEntry(logger)
	id, ok := entry.Data["run_id"].(string)
	if !ok || id == "" {
		t.Error("expected run_id field on the run entry")
	}

	other := RunEntry(logger)
	if other.Data["run_id"] == id {
		t.Error("expected a fresh run_id per run")
	}
}
