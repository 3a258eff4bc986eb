package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapRequestLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   zapcore.Level
		message string
	}{
		{"structured message", zapcore.InfoLevel, "request completed"},
		{"short line in debug mode", zapcore.DebugLevel, "GET /health 418"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(tt.level)
			h := middleware.RequestID(ZapRequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
				w.Write([]byte("tea"))
			})))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Contains(t, entry.Message, tt.message)
			fields := entry.ContextMap()
			assert.Equal(t, "GET", fields["method"])
			assert.Equal(t, int64(http.StatusTeapot), fields["status"])
			assert.Equal(t, int64(3), fields["bytes"])
			assert.NotEmpty(t, fields["request_id"])
		})
	}
}
