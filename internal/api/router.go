// Package api exposes the report portal over HTTP: login and logout, the
// report list, upload and download, plus capability URLs of the local blob
// backend.
package api

import (
	"report_portal/internal/domain"     // Roles
	"report_portal/internal/metrics"    // Request metrics
	"report_portal/internal/middleware" // Session, gate and role middleware
	"report_portal/internal/views"      // Pages

	"github.com/gin-gonic/gin" // Gin web framework
)

// LocalBlobs is the local backend as the router sees it
type LocalBlobs interface {
	middleware.BlobVerifier
	BlobOpener
}

// Deps are the collaborators the router wires together
type Deps struct {
	Auth           Authenticator            // Login and logout
	Reports        ReportUseCases           // Listing, upload, download
	Sessions       middleware.SessionGetter // Session lookup per request
	LocalBlobs     LocalBlobs               // Set only for the local blob backend
	Metrics        *metrics.Metrics         // Optional request metrics
	Gate           middleware.GatePolicy    // Auth gate policy
	Cookie         CookieConfig             // Session cookie
	MaxUploadBytes int64                    // Multipart size limit
	TrustedProxies []string                 // Proxies allowed to set client IP headers
}

// NewRouter builds the gin engine with every route behind the auth gate,
// except the signed blob URLs which carry their own credential.
func NewRouter(d Deps) (*gin.Engine, error) {
	tmpl, err := views.Templates()
	if err != nil {
		return nil, err
	}
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(gin.Logger(), gin.Recovery()) // Access log and panic recovery
	if d.Metrics != nil {
		r.Use(d.Metrics.GinMiddleware())
	}

	if d.LocalBlobs != nil {
		r.GET("/blobs/:container/:key", middleware.SignedBlobAccess(d.LocalBlobs), BlobHandler(d.LocalBlobs))
	}

	gated := []gin.HandlerFunc{
		middleware.SessionLoader(d.Sessions, d.Cookie.Name), // Resolve the cookie
		middleware.AuthGate(d.Gate),                         // Anonymous requests go to /login
	}
	app := r.Group("/", gated...)
	app.GET("/login", LoginPageHandler())
	app.POST("/login", LoginHandler(d.Auth, d.Cookie))
	app.GET("/logout", LogoutHandler(d.Auth, d.Cookie))
	app.GET("/", HomeHandler())
	app.GET("/reports", ReportsHandler(d.Reports))
	app.GET("/download-pdf/:reportId", DownloadHandler(d.Reports))

	admin := app.Group("/", middleware.RequireRole(domain.RoleAdmin))
	admin.GET("/clients", ClientsHandler(d.Reports))
	admin.POST("/upload-report", UploadReportHandler(d.Reports, d.MaxUploadBytes))

	r.NoRoute(append(gated, func(c *gin.Context) {
		renderError(c, domain.ErrNotFound) // Signed in, unknown path
	})...)
	return r, nil
}
