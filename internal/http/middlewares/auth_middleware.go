package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/wellbot/internal/actorctx"
	"github.com/geocoder89/wellbot/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":      code,
		"message":   message,
		"requestId": c.GetString(CtxRequestID),
	})
}

// RequireAuth accepts "Authorization: <scheme> <token>" and stores the token
// subject on both the gin context and the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Fields(c.GetHeader("Authorization"))
		if len(parts) < 2 {
			abortUnauthorized(c, "token_missing", "Token is missing!")
			return
		}

		subject, err := m.jwt.VerifyToken(parts[1])
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			abortUnauthorized(c, "token_expired", "Token expired, please login again")
			return
		case err != nil:
			abortUnauthorized(c, "token_invalid", "Invalid token")
			return
		}

		c.Set(CtxUserID, subject)
		c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), subject))

		c.Next()
	}
}

// UserIDFromContext returns the subject stored by RequireAuth.
func UserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(CtxUserID)
	return id, id != ""
}
