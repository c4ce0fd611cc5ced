package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubLimiter struct {
	decision Decision
	err      error
}

func (s stubLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	return s.decision, s.err
}

func serve(l Limiter) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(l, zap.NewNop(), nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestMiddleware_Allowed(t *testing.T) {
	w := serve(stubLimiter{decision: Decision{Allowed: true, Limit: 50, Remaining: 49}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "49", w.Header().Get("X-RateLimit-Remaining"))
}

func TestMiddleware_Limited(t *testing.T) {
	w := serve(stubLimiter{decision: Decision{Allowed: false, Limit: 50, RetryAfter: 1500 * time.Millisecond}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
}

func TestMiddleware_FailsOpen(t *testing.T) {
	w := serve(stubLimiter{err: errors.New("connection refused")})
	assert.Equal(t, http.StatusOK, w.Code)
}
