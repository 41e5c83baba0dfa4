package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"report_portal/internal/domain"     // Error kinds
	"report_portal/internal/middleware" // Session identity
	"report_portal/internal/views"      // Error pages

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// badRequestMessage is the only validation text users see
const badRequestMessage = "The upload was rejected: check the client, report name and file."

// statusFor maps an error kind to the HTTP status it is answered with
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusOK // Login page re-rendered
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// renderError answers with the page matching err; details stay in the log
func renderError(c *gin.Context, err error) {
	status := statusFor(err)
	user := middleware.CurrentUser(c)
	switch status {
	case http.StatusForbidden:
		c.HTML(status, views.Unauthorized, gin.H{"Title": "Access denied", "User": user})
	case http.StatusBadRequest:
		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path, // Requested path
			"error": err.Error(),        // Validation detail
		}).Warn("Request rejected")
		c.HTML(status, views.Error, gin.H{"Title": "Bad request", "User": user, "Message": badRequestMessage})
	case http.StatusNotFound:
		c.HTML(status, views.Error, gin.H{"Title": "Not found", "User": user, "Message": "The requested page was not found."})
	default:
		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path, // Requested path
			"error": err.Error(),        // Error message
		}).Error("Request failed")
		c.HTML(http.StatusInternalServerError, views.Error, gin.H{"Title": "Error", "User": user, "Message": "An internal error occurred. Please try again later."})
	}
	c.Abort()
}
