package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/natillera-ledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name              string
		logLevel          string
		expectedSlogLevel slog.Level
	}{
		{"DebugLevel", "debug", slog.LevelDebug},
		{"InfoLevel", "info", slog.LevelInfo},
		{"WarnLevel", "warn", slog.LevelWarn},
		{"WarningAlias", "WARNING", slog.LevelWarn},
		{"ErrorLevel", "error", slog.LevelError},
		{"DefaultToInfo", "unknown", slog.LevelInfo},
		{"EmptyToInfo", "", slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				Application: config.ApplicationConfig{Name: "natillera-test", Env: "test"},
				Logging:     config.LoggingConfig{Level: tc.logLevel},
			}

			logger := NewLogger(cfg)
			require.NotNil(t, logger)

			assert.True(t, logger.Enabled(context.Background(), tc.expectedSlogLevel))
			if tc.expectedSlogLevel > slog.LevelDebug {
				assert.False(t, logger.Enabled(context.Background(), tc.expectedSlogLevel-1))
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	t.Run("AddsCorrelationID", func(t *testing.T) {
		buf.Reset()
		ctx := ContextWithCorrelationID(context.Background(), "corr-123")
		FromContext(ctx, base).Info("contribution registered")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "corr-123", line["correlation_id"])
		assert.Equal(t, "corr-123", CorrelationID(ctx))
	})

	t.Run("LeavesLoggerUntouchedWithoutID", func(t *testing.T) {
		buf.Reset()
		FromContext(context.Background(), base).Info("no correlation")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		_, ok := line["correlation_id"]
		assert.False(t, ok)
	})
}
