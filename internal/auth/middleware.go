package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/KevinKickass/OpenAssetCore/internal/lifecycle"
	"github.com/gin-gonic/gin"
)

const (
	ActorKey  = "actor"
	ClaimsKey = "claims"

	// SyncActor is recorded as usuario_modificacao for sync API writes.
	SyncActor = "sync-api"
)

// RejectFunc writes the response of a rejected request.
type RejectFunc func(c *gin.Context, status int, message string)

func defaultReject(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// AuthMiddleware requires a valid bearer token and attaches its actor to the
// request context.
func AuthMiddleware(v *Verifier, reject RejectFunc) gin.HandlerFunc {
	if reject == nil {
		reject = defaultReject
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			reject(c, http.StatusUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			reject(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := v.Verify(parts[1])
		if err != nil {
			reject(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		setActor(c, claims.Actor())
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// APIKeyMiddleware guards the sync API with the static x-api-key secret.
// An empty key rejects every request.
func APIKeyMiddleware(key string, reject RejectFunc) gin.HandlerFunc {
	if reject == nil {
		reject = defaultReject
	}
	return func(c *gin.Context) {
		given := c.GetHeader("x-api-key")
		if key == "" || given == "" || subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			reject(c, http.StatusUnauthorized, "invalid or missing API key")
			c.Abort()
			return
		}

		setActor(c, SyncActor)
		c.Next()
	}
}

func setActor(c *gin.Context, actor string) {
	c.Set(ActorKey, actor)
	c.Request = c.Request.WithContext(lifecycle.WithActor(c.Request.Context(), actor))
}

// Actor returns the authenticated actor of the request.
func Actor(c *gin.Context) string {
	if actor := c.GetString(ActorKey); actor != "" {
		return actor
	}
	return lifecycle.DefaultActor
}
