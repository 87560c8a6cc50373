package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErr_WrapsAndLogsScope(t *testing.T) {
	var buf bytes.Buffer
	log := New("donations").
		WithHandler(NewHandler(&buf, "debug", "json")).
		File("donation_controller").
		Function("Confirm")

	sentinel := errors.New("not found")
	err := log.Err("failed to confirm donation", sentinel, "userID", "u-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "failed to confirm donation: not found", err.Error())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "donations", entry["package"])
	assert.Equal(t, "donation_controller", entry["file"])
	assert.Equal(t, "Confirm", entry["function"])
	assert.Equal(t, "u-1", entry["userID"])
	assert.Equal(t, "not found", entry["error"])
}

func TestErr_NilError(t *testing.T) {
	log := New("test").WithHandler(NewHandler(&bytes.Buffer{}, "info", "json"))

	err := log.Err("something broke", nil)
	assert.EqualError(t, err, "something broke")
}

func TestError_ReturnsMessage(t *testing.T) {
	log := New("test").WithHandler(NewHandler(&bytes.Buffer{}, "info", "text"))

	assert.EqualError(t, log.Error("invalid user ID", "userID", ""), "invalid user ID")
	assert.EqualError(t, log.ErrMsg("database is nil"), "database is nil")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestDebug_FilteredByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("test").WithHandler(NewHandler(&buf, "info", "json"))

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}
