package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mockify/backend/internal/middleware"
)

func newRouter(logger *zap.Logger, origins string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Logger(logger, "/api/health"), middleware.CORS(origins))
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := newRouter(zap.New(core), "*")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/rooms", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])

	// health checks stay below info
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, 1, logs.Len())
}

func TestLogger_KeepsIncomingRequestID(t *testing.T) {
	r := newRouter(zap.NewNop(), "*")
	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{"wildcard", "*", "http://a.test", http.MethodGet, "*", http.StatusOK},
		{"empty list allows all", "", "http://a.test", http.MethodGet, "*", http.StatusOK},
		{"listed origin echoed", "http://a.test, http://b.test", "http://b.test", http.MethodGet, "http://b.test", http.StatusOK},
		{"unlisted origin", "http://a.test", "http://evil.test", http.MethodGet, "", http.StatusOK},
		{"preflight", "http://a.test", "http://a.test", http.MethodOptions, "http://a.test", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(zap.NewNop(), tt.allowed)
			req := httptest.NewRequest(tt.method, "/api/rooms", nil)
			req.Header.Set("Origin", tt.origin)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
