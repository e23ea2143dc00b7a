package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rate-shopper/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(middleware.RequestIDKey)) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })
	return r
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_Generated(t *testing.T) {
	w := serve(newRouter(middleware.RequestID()), http.MethodGet, "/ok", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	rid := w.Header().Get(middleware.RequestIDHeader)
	assert.NotEmpty(t, rid)
	assert.Equal(t, rid, w.Body.String())
}

func TestRequestID_Propagated(t *testing.T) {
	w := serve(newRouter(middleware.RequestID()), http.MethodGet, "/ok",
		map[string]string{middleware.RequestIDHeader: "req-123"})

	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "req-123", w.Body.String())
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newRouter(middleware.RequestID(), middleware.RequestLogger(zap.New(core)))

	serve(r, http.MethodGet, "/ok", nil)
	serve(r, http.MethodGet, "/bad", nil)
	serve(r, http.MethodGet, "/boom", nil)

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 2, time.Minute)
	r := newRouter(rl.Handler())

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ok", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ok", nil).Code)
	w := serve(r, http.MethodGet, "/ok", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestRateLimiter_PerIP(t *testing.T) {
	rl := middleware.NewRateLimiter(1, 1, time.Minute)

	assert.True(t, rl.GetLimiter("10.0.0.1").Allow())
	assert.False(t, rl.GetLimiter("10.0.0.1").Allow())
	assert.True(t, rl.GetLimiter("10.0.0.2").Allow())
	assert.Same(t, rl.GetLimiter("10.0.0.1"), rl.GetLimiter("10.0.0.1"))
	assert.Equal(t, 2, rl.Size())
}

func TestTimeout_SetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Timeout(50 * time.Millisecond))
	var hasDeadline bool
	r.GET("/ok", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodGet, "/ok", nil)
	assert.True(t, hasDeadline)
}

func TestTimeout_Disabled(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Timeout(0))
	var hasDeadline bool
	r.GET("/ok", func(c *gin.Context) {
		_, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodGet, "/ok", nil)
	assert.False(t, hasDeadline)
}

func TestCORS_AllowedOrigin(t *testing.T) {
	r := newRouter(middleware.CORS("http://localhost:5173, http://localhost:3000/"))

	w := serve(r, http.MethodGet, "/ok", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(r, http.MethodGet, "/ok", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, middleware.SplitOrigins(" http://a.test/ ,, http://b.test"))
	assert.Empty(t, middleware.SplitOrigins(""))
}

func TestMetrics_NilClientPassesThrough(t *testing.T) {
	w := serve(newRouter(middleware.Metrics(nil, "rate-shopper")), http.MethodGet, "/ok", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", middleware.StatusClass(200))
	assert.Equal(t, "3xx", middleware.StatusClass(301))
	assert.Equal(t, "4xx", middleware.StatusClass(429))
	assert.Equal(t, "5xx", middleware.StatusClass(502))
	assert.Equal(t, "unknown", middleware.StatusClass(100))
}
