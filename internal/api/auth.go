package api

import (
	"context"  // Service calls
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Cookie lifetime

	"report_portal/internal/domain"     // Error kinds
	"report_portal/internal/middleware" // Session on the context
	"report_portal/internal/session"    // Session records
	"report_portal/internal/views"      // Login page

	"github.com/gin-gonic/gin" // Gin web framework
)

// loginFailedMessage is shown for every failed login
const loginFailedMessage = "Invalid username or password"

// Authenticator is what the login and logout handlers need
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*session.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// CookieConfig describes the session cookie
type CookieConfig struct {
	Name   string        // Cookie name
	TTL    time.Duration // Lifetime, matches the session TTL
	Secure bool          // HTTPS only
}

func (cc CookieConfig) set(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cc.Name, value, maxAge, "/", "", cc.Secure, true)
}

// LoginForm is the posted login form
type LoginForm struct {
	Username string `form:"username"` // Submitted username
	Password string `form:"password"` // Submitted password
}

// LoginPageHandler renders the login form
func LoginPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, views.Login, gin.H{"Title": "Sign in"})
	}
}

// LoginHandler verifies the form, opens a fresh session and redirects home.
// Unknown usernames and wrong passwords produce the same page.
func LoginHandler(auth Authenticator, cc CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form LoginForm
		_ = c.ShouldBind(&form) // Missing fields fail verification below
		sess, err := auth.Login(c.Request.Context(), form.Username, form.Password)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCredentials) {
				c.HTML(http.StatusOK, views.Login, gin.H{"Title": "Sign in", "Message": loginFailedMessage})
				return
			}
			renderError(c, err)
			return
		}
		cc.set(c, sess.ID, int(cc.TTL.Seconds())) // New id on every login
		c.Redirect(http.StatusFound, "/")
	}
}

// LogoutHandler destroys the session, expires the cookie and redirects to
// /login. A store failure is a 500 and the session stays valid.
func LogoutHandler(auth Authenticator, cc CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id string
		if sess := middleware.CurrentSession(c); sess != nil {
			id = sess.ID
		}
		if err := auth.Logout(c.Request.Context(), id); err != nil {
			renderError(c, err)
			return
		}
		cc.set(c, "", -1) // Expire the cookie
		c.Redirect(http.StatusFound, middleware.LoginPath)
	}
}
