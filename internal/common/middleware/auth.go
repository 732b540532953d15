package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"piano-quest/internal/common/errors"
	"piano-quest/internal/features/auth/models"
)

const (
	HeaderProviderID = "X-Provider-Id"

	keyUser      = "user"
	keyExpiresAt = "session_expires_at"
)

// SessionVerifier checks a bearer token together with the provider id sent with it.
type SessionVerifier interface {
	Verify(ctx context.Context, token, providerID string) (*models.User, time.Time, error)
}

// RequireAuth rejects requests without a valid session and stores the user in the context.
func RequireAuth(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Fail(c, errors.NewUnauthorizedError("missing bearer token"))
			return
		}
		providerID := c.GetHeader(HeaderProviderID)
		if providerID == "" {
			Fail(c, errors.NewUnauthorizedError("missing provider id"))
			return
		}

		user, expiresAt, err := verifier.Verify(c.Request.Context(), token, providerID)
		if err != nil {
			Fail(c, err)
			return
		}

		c.Set(keyUserID, user.ID)
		c.Set(keyUser, user)
		c.Set(keyExpiresAt, expiresAt)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth.
func CurrentUser(c *gin.Context) (*models.User, time.Time, bool) {
	v, ok := c.Get(keyUser)
	if !ok {
		return nil, time.Time{}, false
	}
	user, ok := v.(*models.User)
	return user, c.GetTime(keyExpiresAt), ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
