package logger

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "server", "warn")

	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), `"role":"server"`)
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestNewLoggerInvalidLevelFallsBackToDebug(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "server", "loud")

	l.Debug().Msg("debug line")
	assert.Contains(t, buf.String(), "debug line")
}

func TestFromContextWithoutLogger(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
}

func TestMiddlewareAssignsTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	base := newLogger(&buf, "test", "debug")

	var fromHandler *Logger
	router := gin.New()
	router.Use(Middleware(base))
	router.GET("/ping", func(c *gin.Context) {
		fromHandler = FromContext(c.Request.Context())
		fromHandler.Info().Msg("inside handler")
		c.String(http.StatusTeapot, "pong")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	traceID := rec.Header().Get(TraceIDHeader)
	require.NotEmpty(t, traceID)
	require.NotNil(t, fromHandler)
	out := buf.String()
	assert.Contains(t, out, `"trace_id":"`+traceID+`"`)
	assert.Contains(t, out, "inside handler")
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"uri":"/ping"`)
}

func TestMiddlewareKeepsIncomingTraceID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(Nop()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(TraceIDHeader))
}
