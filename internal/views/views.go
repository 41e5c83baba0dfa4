// Package views holds the server-rendered HTML pages.
package views

import (
	"embed"         // Templates compiled into the binary
	"html/template" // Escaping HTML renderer
	"time"          // Date formatting
)

//go:embed templates/*.html
var files embed.FS

// Template names rendered by the handlers
const (
	Login        = "login.html"
	Reports      = "reports.html"
	Clients      = "clients.html"
	Unauthorized = "unauthorized.html"
	Error        = "error.html"
)

// Funcs are the helpers available inside every page
var Funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
}

// Templates parses the embedded pages; gin's engine takes the result via
// SetHTMLTemplate.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(files, "templates/*.html")
}
