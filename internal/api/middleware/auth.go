package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"podbrief/internal/api/errors"
	"podbrief/internal/app/auth"
	"podbrief/internal/app/model"
)

const userIDKey = "user_id"

// TokenValidator checks bearer tokens.
type TokenValidator interface {
	Validate(token string) (auth.Identity, error)
}

// UserProvisioner creates the account row on first sight of a user.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, id, email string) (*model.User, error)
}

// Auth requires a valid bearer token and stores the caller's user id.
// Browsers cannot set headers on websocket upgrades, so the token may
// also arrive as the access_token query parameter on GET requests.
func Auth(tokens TokenValidator, users UserProvisioner, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		identity, err := tokens.Validate(raw)
		if err != nil {
			writeError(c, errors.NewUnauthorizedError("missing or invalid access token"))
			return
		}

		if _, err := users.EnsureUser(c.Request.Context(), identity.UserID, identity.Email); err != nil {
			logger.Error("failed to provision user", zap.String("user_id", identity.UserID), zap.Error(err))
			HandleError(c, err)
			return
		}

		c.Set(userIDKey, identity.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	if c.Request.Method == "GET" {
		return c.Query("access_token")
	}
	return ""
}

// UserID returns the authenticated caller set by Auth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// CronSecret guards internal endpoints with a shared secret header. An
// empty secret disables them.
func CronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader("X-Cron-Secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			writeError(c, errors.NewUnauthorizedError("invalid cron secret"))
			return
		}
		c.Next()
	}
}
