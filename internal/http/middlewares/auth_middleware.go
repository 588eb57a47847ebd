package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stackquiz/accounts-api/internal/auth"
	"github.com/stackquiz/accounts-api/internal/cache"
	"github.com/stackquiz/accounts-api/internal/domain/user"
	"github.com/stackquiz/accounts-api/internal/repo/postgres"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	VerifySessionToken(token string) (*auth.Claims, error)
}

type UserLoader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLoader
	cache *cache.Cache[user.User]
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{
		jwt:   jwt,
		users: users,
		// Short TTL: a deleted user keeps a live token for at most this long.
		cache: cache.New[user.User](30 * time.Second),
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}

// RequireAuth verifies the bearer token and resolves it to a live user record.
// Tokens for users that have since been deleted are rejected.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Please login to access this resource")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Please login to access this resource")
			return
		}

		claims, err := m.jwt.VerifySessionToken(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session token")
			return
		}

		u, ok := m.cache.Get(claims.UserID)

		if !ok {
			lctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			u, err = m.users.GetByID(lctx, claims.UserID)

			if err != nil {
				if errors.Is(err, postgres.ErrUserNotFound) {
					abortUnauthorized(c, "Invalid or expired session token")
					return
				}

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Internal Server Error",
					"error":   err.Error(),
				})
				return
			}

			m.cache.Set(claims.UserID, u)
		}

		SetCurrentUser(c, u)

		c.Next()
	}
}

// SetCurrentUser stashes the resolved user on the request context. Exposed so
// handler tests can inject an identity without a real token.
func SetCurrentUser(c *gin.Context, u user.User) {
	c.Set(ctxUserKey, u)
}

// CurrentUser returns the authenticated user stashed by RequireAuth.
func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
