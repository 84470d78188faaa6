package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andrey-makeyev/CurrencyExchangeRatePortal/internal/platform/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStructuredLoggingMiddleware_InjectsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var fromGin, fromCtx *slog.Logger
	router := gin.New()
	router.Use(StructuredLoggingMiddleware(base))
	router.GET("/ping", func(c *gin.Context) {
		fromGin = GetLoggerFromContext(c)
		fromCtx = GetLoggerFromCtx(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	requestID := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, requestID)
	require.NotNil(t, fromGin)
	assert.Same(t, fromGin, fromCtx)

	logged := buf.String()
	assert.Contains(t, logged, "Request completed")
	assert.Contains(t, logged, requestID)
	assert.Contains(t, logged, `"path":"/ping"`)
	assert.Contains(t, logged, `"status":204`)
}

func TestGetLoggerFromCtx_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), GetLoggerFromCtx(context.Background()))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, custom, GetLoggerFromCtx(logging.WithLogger(context.Background(), custom)))
}

func TestRateLimit(t *testing.T) {
	limiterInstance, err := NewRateLimiter("2-M")
	require.NoError(t, err)

	router := gin.New()
	router.Use(RateLimit(limiterInstance))
	router.GET("/limited", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewRateLimiter_InvalidFormat(t *testing.T) {
	_, err := NewRateLimiter("lots")
	assert.Error(t, err)
}
