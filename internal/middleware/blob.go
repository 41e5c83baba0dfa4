package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// BlobVerifier checks a signed blob token against the object it names
type BlobVerifier interface {
	Verify(token, container, key string) error
}

// SignedBlobAccess guards /blobs/:container/:key. The token query parameter is
// the only credential; it must be valid, unexpired and bound to this object.
func SignedBlobAccess(v BlobVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token") // Signed token from the URL
		if token == "" {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		if err := v.Verify(token, c.Param("container"), c.Param("key")); err != nil {
			logrus.WithFields(logrus.Fields{
				"container": c.Param("container"), // Requested container
				"key":       c.Param("key"),       // Requested object
				"error":     err.Error(),          // Error message
			}).Warn("Rejected blob token")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
