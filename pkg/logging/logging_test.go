package logging_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentstation/coursemap/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}

func TestContextHelpers(t *testing.T) {
	tl := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), tl.Logger)
	ctx = logging.WithCollection(ctx, "courses")
	ctx = logging.WithOperation(ctx, "create")
	ctx = logging.WithUser(ctx, "u-1")
	ctx = logging.WithFields(ctx, map[string]any{"attempt": 2, "err": errors.New("boom")})

	logging.FromContext(ctx).Info().Msg("hello")

	out := tl.Output()
	assert.Contains(t, out, `"collection":"courses"`)
	assert.Contains(t, out, `"operation":"create"`)
	assert.Contains(t, out, `"user_id":"u-1"`)
	assert.Contains(t, out, `"attempt":2`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Len(t, tl.Lines(), 1)
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)

	//nolint:staticcheck // nil context is handled explicitly
	logging.FromContext(nil).Warn().Msg("default logger")
	logging.FromContext(context.Background()).Warn().Msg("still default")

	tl.AssertContains(t, "default logger")
	tl.AssertContains(t, "still default")
}

func TestDisableLoggingForTest(t *testing.T) {
	tl := logging.CaptureLoggingForTest(t)

	t.Run("silenced", func(t *testing.T) {
		logging.DisableLoggingForTest(t)
		logging.Info().Msg("should not appear")
	})

	logging.Info().Msg("restored")
	tl.AssertNotContains(t, "should not appear")
	tl.AssertContains(t, "restored")
}

func TestNewLoggerFromConfigFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coursemap.log")

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:  "debug",
		Format: "json",
		Output: path,
		Fields: map[string]any{"app": "coursemap"},
	})
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	logger.Debug().Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), `"app":"coursemap"`)
}
