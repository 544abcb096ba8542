package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/middleware"
	"github.com/SscSPs/bookkeeping_engine/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret = "middleware-test-secret"
	issuer = "bookkeeping-test"
)

func newRouter(logs *bytes.Buffer, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	r.Use(middleware.StructuredLoggingMiddleware(logger))
	r.Use(extra...)
	r.GET("/whoami", func(c *gin.Context) {
		userID, _ := middleware.GetUserIDFromContext(c)
		middleware.GetLoggerFromCtx(c.Request.Context()).Info("handled")
		c.String(http.StatusOK, userID)
	})
	return r
}

func TestAuthMiddleware_AcceptsValidToken(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(&logs, middleware.AuthMiddleware(secret, issuer))
	token, err := utils.GenerateJWT("alice", secret, issuer, time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())

	// the handler's log line carries the actor
	var found bool
	for _, line := range bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n")) {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(line, &entry))
		if entry["msg"] == "handled" {
			found = true
			assert.Equal(t, "alice", entry["user_id"])
			assert.NotEmpty(t, entry["request_id"])
		}
	}
	assert.True(t, found)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired, err := utils.GenerateJWT("alice", secret, issuer, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	wrongKey, err := utils.GenerateJWT("alice", "other-secret", issuer, time.Hour, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer not-a-jwt"},
		{"expired", "Bearer " + expired},
		{"wrong key", "Bearer " + wrongKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			r := newRouter(&logs, middleware.AuthMiddleware(secret, issuer))
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestStructuredLogging_PropagatesRequestID(t *testing.T) {
	var logs bytes.Buffer
	r := newRouter(&logs)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Contains(t, logs.String(), `"request_id":"req-42"`)
}

func TestRateLimit(t *testing.T) {
	lim, err := middleware.NewMemoryLimiter("2-M")
	require.NoError(t, err)
	var logs bytes.Buffer
	r := newRouter(&logs, middleware.RateLimit(lim))

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
		codes[i] = w.Code
		if i == 2 {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewMemoryLimiter_RejectsBadFormat(t *testing.T) {
	_, err := middleware.NewMemoryLimiter("lots")
	assert.Error(t, err)
}
