package middleware

import (
	"context" // Session store calls

	"report_portal/internal/domain"  // Session identity
	"report_portal/internal/session" // Session records

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Context keys set by SessionLoader
const (
	SessionKey = "session" // *session.Session
	UserKey    = "user"    // *domain.SessionUser
)

// SessionGetter loads the session behind a cookie value
type SessionGetter interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// SessionLoader resolves the session cookie and stores the session on the
// context. Missing, unknown or unreadable sessions leave the request
// anonymous; nothing is written to the store here.
func SessionLoader(store SessionGetter, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName) // Opaque session id
		if err != nil || id == "" {
			c.Next() // Anonymous request
			return
		}
		sess, err := store.Get(c.Request.Context(), id)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"path":  c.Request.URL.Path, // Requested path
				"error": err.Error(),        // Error message
			}).Error("Failed to load session")
			c.Next()
			return
		}
		if sess.Authenticated() {
			c.Set(SessionKey, sess)    // Full session record
			c.Set(UserKey, sess.User) // Identity for handlers
		}
		c.Next()
	}
}

// CurrentSession returns the loaded session, or nil for anonymous requests
func CurrentSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}

// CurrentUser returns the session identity, or nil for anonymous requests
func CurrentUser(c *gin.Context) *domain.SessionUser {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(*domain.SessionUser); ok {
			return u
		}
	}
	return nil
}
