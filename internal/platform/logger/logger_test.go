package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/studykit/internal/config"
	"github.com/phrazzld/studykit/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logger.ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	l, err := logger.Setup(config.ServerConfig{Port: 8080, LogLevel: "warn"})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, l, slog.Default())
	assert.False(t, l.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, l.Enabled(context.Background(), slog.LevelWarn))
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()
	defaultLogger, _ := logger.NewTestLogger()
	customLogger, _ := logger.NewTestLogger()

	tests := []struct {
		name     string
		ctx      context.Context
		expected *slog.Logger
	}{
		{"nil_context_returns_default", nil, defaultLogger},
		{"context_without_logger_returns_default", context.Background(), defaultLogger},
		{"context_with_logger_returns_context_logger", logger.WithLogger(context.Background(), customLogger), customLogger},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.expected, logger.FromContextOrDefault(tt.ctx, defaultLogger))
		})
	}
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	t.Run("stores_logger", func(t *testing.T) {
		l, buf := logger.NewTestLogger()
		ctx := logger.WithLogger(context.Background(), l.With("trace_id", "abc"))
		logger.FromContext(ctx).Info("hello")

		entries, err := buf.GetLogEntries()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "abc", entries[0]["trace_id"])
		assert.Equal(t, "hello", entries[0]["msg"])
	})

	t.Run("nil_logger_panics", func(t *testing.T) {
		assert.Panics(t, func() {
			logger.WithLogger(context.Background(), nil)
		})
	})
}
