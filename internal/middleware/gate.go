package middleware

import (
	"net/http" // HTTP status codes

	"report_portal/internal/domain" // Session identity

	"github.com/gin-gonic/gin" // Gin web framework
)

// Paths the gate redirects to
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Decision is the outcome of the auth gate for one request
type Decision int

const (
	Allow         Decision = iota // Continue to the route
	RedirectLogin                 // Anonymous request, send to /login
	RedirectHome                  // Signed-in user hitting /login
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	}
	return "unknown"
}

// GatePolicy tunes the gate
type GatePolicy struct {
	RedirectAuthenticatedFromLogin bool // Signed-in users visiting /login go home
}

// Decide is the pure gate rule: /login is always reachable (unless the
// policy sends signed-in users home), everything else needs a session user.
func Decide(path string, user *domain.SessionUser, p GatePolicy) Decision {
	if path == LoginPath {
		if user != nil && p.RedirectAuthenticatedFromLogin {
			return RedirectHome
		}
		return Allow
	}
	if user == nil {
		return RedirectLogin
	}
	return Allow
}

// AuthGate applies Decide to every request it wraps, including unmatched
// routes when installed with Use before NoRoute.
func AuthGate(p GatePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch Decide(c.Request.URL.Path, CurrentUser(c), p) {
		case RedirectLogin:
			c.Redirect(http.StatusFound, LoginPath) // No session
			c.Abort()
		case RedirectHome:
			c.Redirect(http.StatusFound, HomePath) // Already signed in
			c.Abort()
		default:
			c.Next()
		}
	}
}
