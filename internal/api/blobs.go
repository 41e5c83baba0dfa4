package api

import (
	"errors"   // Error inspection
	"io"       // Blob readers
	"io/fs"    // Not-exist checks
	"net/http" // HTTP status codes

	"report_portal/internal/blob" // Local blob backend

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// BlobOpener reads objects of the local backend
type BlobOpener interface {
	Open(container, key string) (io.ReadCloser, int64, error)
}

// BlobHandler serves a local-backend object behind SignedBlobAccess
func BlobHandler(store BlobOpener) gin.HandlerFunc {
	return func(c *gin.Context) {
		container, key := c.Param("container"), c.Param("key")
		rc, size, err := store.Open(container, key)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, blob.ErrInvalidKey) {
				c.AbortWithStatus(http.StatusNotFound)
				return
			}
			logrus.WithFields(logrus.Fields{
				"container": container,   // Requested container
				"key":       key,         // Requested object
				"error":     err.Error(), // Error message
			}).Error("Failed to open blob")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		defer rc.Close()
		c.DataFromReader(http.StatusOK, size, blob.ContentTypePDF, rc, nil)
	}
}
