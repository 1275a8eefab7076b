package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/looplj/tenanthub/internal/tracing"
)

func TestWithTracing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	engine := gin.New()
	engine.Use(WithLoggingTracing(tracing.Config{
		TraceHeader: "TH-Trace-Id",
	}))

	engine.GET("/", func(c *gin.Context) {
		traceID, ok := tracing.GetTraceID(c.Request.Context())
		assert.True(t, ok)
		assert.NotEmpty(t, traceID)
		assert.Contains(t, traceID, "th-")
		c.Status(http.StatusOK)
	})

	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("TH-Request-Id"))
}

func TestWithTracingExistingHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("TH-Trace-Id", "th-existing-trace-id")

	w := httptest.NewRecorder()

	engine := gin.New()
	engine.Use(WithLoggingTracing(tracing.Config{
		TraceHeader: "TH-Trace-Id",
	}))

	engine.GET("/", func(c *gin.Context) {
		traceID, ok := tracing.GetTraceID(c.Request.Context())
		assert.True(t, ok)
		assert.Equal(t, "th-existing-trace-id", traceID)
		c.Status(http.StatusOK)
	})

	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWithTracingEmptyConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	engine := gin.New()
	engine.Use(WithLoggingTracing(tracing.Config{}))

	engine.GET("/", func(c *gin.Context) {
		traceID, ok := tracing.GetTraceID(c.Request.Context())
		assert.True(t, ok)
		assert.NotEmpty(t, traceID)
		c.Status(http.StatusOK)
	})

	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
