package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("что-то"))
}

func TestNew(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "info", "text").Info("hello", "k", "v")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("json by default and level filter", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "warn", "")
		logger.Info("skipped")
		logger.Warn("kept")
		assert.NotContains(t, buf.String(), "skipped")
		assert.Contains(t, buf.String(), `"msg":"kept"`)
	})
}

func TestTGBotAPIAdapter(t *testing.T) {
	t.Run("library output goes through the masker", func(t *testing.T) {
		var buf bytes.Buffer
		adapter := NewTGBotAPIAdapter(New(&buf, "debug", "text"))

		adapter.Printf("Endpoint: %s, response: %s", "https://api.telegram.org/bot42:abcdefghijklmnopqrstuvwxyz/getMe", "ok")
		adapter.Println("polling", "stopped")

		out := buf.String()
		assert.NotContains(t, out, "abcdefghijklmnopqrstuvwxyz")
		assert.Contains(t, out, "bot***:"+tokenMask)
		assert.Contains(t, out, "polling stopped")
		assert.Contains(t, out, "component=tgbotapi")
		assert.Contains(t, out, "level=DEBUG")
	})

	t.Run("debug messages are dropped at info level", func(t *testing.T) {
		var buf bytes.Buffer
		adapter := NewTGBotAPIAdapter(New(&buf, "info", "text"))
		adapter.Println("noise")
		assert.Empty(t, buf.String())

		adapter.Level = slog.LevelWarn
		adapter.Println("signal")
		assert.Contains(t, buf.String(), "signal")
	})
}

func TestNewZap(t *testing.T) {
	t.Run("level from config", func(t *testing.T) {
		l, err := NewZap("warn", "json")
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := NewZap("loud", "text")
		assert.Error(t, err)
	})
}
