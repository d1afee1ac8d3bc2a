package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	subnet, err := ParseTrustedSubnet("192.168.1.0/24")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusCreated)
		if _, err := w.Write([]byte("abc123")); err != nil {
			t.Logf("Ошибка при записи в response: %v", err)
		}
	})
	chain := ClientIPMiddleware(subnet, zap.NewNop())(LoggingMiddleware(zap.New(core))(handler))

	req := httptest.NewRequest(http.MethodPost, "/shorten", nil)
	req.RemoteAddr = "192.168.1.10:5555"
	req.Header.Set("X-Real-IP", "203.0.113.7")
	w := httptest.NewRecorder()

	chain.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "abc123", w.Body.String())

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/shorten", fields["uri"])
	assert.Equal(t, "203.0.113.7", fields["client_ip"])
	assert.EqualValues(t, http.StatusCreated, fields["status"])
	assert.EqualValues(t, len("abc123"), fields["size"])
}

func TestLoggingMiddleware_DifferentStatusCodes(t *testing.T) {
	middleware := LoggingMiddleware(zap.NewNop())

	for _, statusCode := range []int{200, 201, 302, 400, 404, 429, 500} {
		t.Run("Status"+strconv.Itoa(statusCode), func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(statusCode)
				if _, err := w.Write([]byte("response")); err != nil {
					t.Logf("Ошибка при записи в response: %v", err)
				}
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			middleware(handler).ServeHTTP(w, req)

			assert.Equal(t, statusCode, w.Code)
			assert.Equal(t, "response", w.Body.String())
		})
	}
}

func TestLoggingMiddleware_LevelAndRequestID(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		write     bool
		wantLevel zapcore.Level
		wantCode  int
	}{
		{"Implicit OK", 0, true, zapcore.InfoLevel, http.StatusOK},
		{"Not found", http.StatusNotFound, false, zapcore.InfoLevel, http.StatusNotFound},
		{"Too many requests", http.StatusTooManyRequests, true, zapcore.InfoLevel, http.StatusTooManyRequests},
		{"Server error", http.StatusInternalServerError, true, zapcore.ErrorLevel, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				if tt.write {
					_, _ = w.Write([]byte("body"))
				}
			})
			chain := chimw.RequestID(LoggingMiddleware(zap.New(core))(handler))

			chain.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abc123", nil))

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, tt.wantLevel, entry.Level)
			fields := entry.ContextMap()
			assert.EqualValues(t, tt.wantCode, fields["status"])
			assert.NotEmpty(t, fields["request_id"])
		})
	}
}
