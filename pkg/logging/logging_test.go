package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelWarn, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetup_JSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger, err := Setup(&buf, "info", "json")
	require.NoError(t, err)

	LogOp(logger, "cmd", "scan", 1500*time.Millisecond, nil)
	logger.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "scan", rec["name"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestLogOp_FailureIsWarn(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger, err := Setup(&buf, "warn", "text")
	require.NoError(t, err)

	LogOp(logger, "cmd", "scan", time.Second, nil)
	assert.Empty(t, buf.String(), "success is below warn")

	LogOp(logger, "cmd", "sync", time.Second, errors.New("boom"))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "err=boom")
}

func TestLogOp_WrappedCancelIsInfo(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger, err := Setup(&buf, "warn", "text")
	require.NoError(t, err)

	LogOp(logger, "cmd", "scan", time.Second, fmt.Errorf("walk failed: %w", context.Canceled))
	assert.Empty(t, buf.String())
}

func TestSetup_UnknownFormat(t *testing.T) {
	_, err := Setup(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}
