package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recetario/backend/internal/response"
	"github.com/pageza/recetario/backend/internal/session"
)

// Context keys set by LoadSession.
const (
	UserIDKey       = "user_id"
	SessionKey      = "session"
	SessionTokenKey = "session_token"
)

// SessionResolver looks up the session behind a cookie token.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// LoadSession attaches the caller's session to the context when the cookie holds a
// valid one. Requests without a session continue anonymously.
func LoadSession(resolver SessionResolver, cookieName string, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		sess, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrInvalidToken) {
				logger.Warn("failed to resolve session", "error", err)
			}
			c.Next()
			return
		}

		c.Set(UserIDKey, sess.UserID)
		c.Set(SessionKey, sess)
		c.Set(SessionTokenKey, token)
		c.Next()
	}
}

// RequireAuth rejects requests that carry no session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			response.Unauthorized(c, response.MsgUnauthorized)
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

// CurrentSession returns the session loaded for this request, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// SessionToken returns the raw cookie token of the loaded session.
func SessionToken(c *gin.Context) string {
	return c.GetString(SessionTokenKey)
}
