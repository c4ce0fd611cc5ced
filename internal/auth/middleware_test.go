package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/x", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"actor":     Actor(c),
			"ctx_actor": lifecycle.ActorFrom(c.Request.Context()),
		})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	v := NewVerifier("0123456789abcdef0123456789abcdef", "")
	token, err := v.Sign("user-1", "ana@malta.com.br", time.Hour)
	require.NoError(t, err)
	expired, err := v.Sign("user-1", "ana@malta.com.br", -time.Minute)
	require.NoError(t, err)
	foreign, err := NewVerifier("another-secret-another-secret-xx", "").Sign("user-1", "", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valido", "Bearer " + token, http.StatusOK},
		{"sem cabecalho", "", http.StatusUnauthorized},
		{"formato", "Token " + token, http.StatusUnauthorized},
		{"expirado", "Bearer " + expired, http.StatusUnauthorized},
		{"outra chave", "Bearer " + foreign, http.StatusUnauthorized},
	}

	r := newRouter(AuthMiddleware(v, nil))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"actor":"ana@malta.com.br","ctx_actor":"ana@malta.com.br"}`, w.Body.String())
			}
		})
	}
}

func TestVerifierFallsBackToSubject(t *testing.T) {
	v := NewVerifier("0123456789abcdef0123456789abcdef", "platform")
	token, err := v.Sign("user-42", "", time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Actor())

	_, err = NewVerifier("0123456789abcdef0123456789abcdef", "other").Verify(token)
	assert.Error(t, err)
}

func TestAPIKeyMiddleware(t *testing.T) {
	r := newRouter(APIKeyMiddleware("s3cret", nil))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("x-api-key", "s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"actor":"sync-api","ctx_actor":"sync-api"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("x-api-key", "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	open := newRouter(APIKeyMiddleware("", nil))
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	w = httptest.NewRecorder()
	open.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
