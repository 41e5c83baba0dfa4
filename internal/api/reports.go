package api

import (
	"context"        // Service calls
	"fmt"            // Error wrapping
	"io"             // Reading uploads
	"mime"           // Content-Disposition
	"mime/multipart" // Uploaded files
	"net/http"       // HTTP status codes
	"net/url"        // Redirect query
	"strconv"        // Path parameters

	"report_portal/internal/blob"       // Content type
	"report_portal/internal/domain"     // Domain models
	"report_portal/internal/middleware" // Session identity
	"report_portal/internal/service"    // Report use cases
	"report_portal/internal/views"      // Pages

	"github.com/gin-gonic/gin" // Gin web framework
)

// ReportUseCases is what the report handlers need
type ReportUseCases interface {
	ListReports(ctx context.Context, user *domain.SessionUser) (*service.ReportView, error)
	ListClients(ctx context.Context, user *domain.SessionUser) ([]domain.User, error)
	UploadReport(ctx context.Context, user *domain.SessionUser, in service.UploadInput) (*domain.Report, error)
	DownloadReport(ctx context.Context, user *domain.SessionUser, reportID uint) (*service.Download, error)
}

// UploadRequest is the multipart upload form
type UploadRequest struct {
	ClientID   uint                  `form:"clientId" binding:"required"`   // Owning client
	ReportName string                `form:"reportName" binding:"required"` // Display name
	FileName   string                `form:"fileName"`                      // Optional object key
	ReportFile *multipart.FileHeader `form:"reportFile" binding:"required"` // PDF upload
}

// HomeHandler sends the root to the report list
func HomeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/reports")
	}
}

// ReportsHandler renders the caller's report list
func ReportsHandler(svc ReportUseCases) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		view, err := svc.ListReports(c.Request.Context(), user)
		if err != nil {
			renderError(c, err)
			return
		}
		data := gin.H{"Title": "Reports", "User": user, "View": view}
		if view.Admin {
			data["Uploaded"] = c.Query("uploaded") // Banner after a successful upload
		}
		c.HTML(http.StatusOK, views.Reports, data)
	}
}

// ClientsHandler renders the client directory for admins
func ClientsHandler(svc ReportUseCases) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		clients, err := svc.ListClients(c.Request.Context(), user)
		if err != nil {
			renderError(c, err)
			return
		}
		c.HTML(http.StatusOK, views.Clients, gin.H{"Title": "Clients", "User": user, "Clients": clients})
	}
}

// UploadReportHandler stores one uploaded PDF for a client and redirects to
// the list with a confirmation banner
func UploadReportHandler(svc ReportUseCases, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		var req UploadRequest
		if err := c.ShouldBind(&req); err != nil {
			renderError(c, fmt.Errorf("%w: clientId, reportName and reportFile are required", domain.ErrInvalidInput))
			return
		}
		content, err := readUpload(req.ReportFile)
		if err != nil {
			renderError(c, fmt.Errorf("%w: unreadable upload", domain.ErrInvalidInput))
			return
		}
		report, err := svc.UploadReport(c.Request.Context(), middleware.CurrentUser(c), service.UploadInput{
			ClientID:     req.ClientID,            // Owning client
			ReportName:   req.ReportName,          // Display name
			FileName:     req.FileName,            // Explicit key, may be empty
			OriginalName: req.ReportFile.Filename, // Default key
			Content:      content,                 // PDF bytes
			Size:         req.ReportFile.Size,     // Declared size
		})
		if err != nil {
			renderError(c, err)
			return
		}
		c.Redirect(http.StatusFound, "/reports?uploaded="+url.QueryEscape(report.Name))
	}
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// DownloadHandler streams a report as an attachment
func DownloadHandler(svc ReportUseCases) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("reportId"), 10, 64)
		if err != nil || id == 0 {
			renderError(c, domain.ErrNotFound) // Not a report id
			return
		}
		d, err := svc.DownloadReport(c.Request.Context(), middleware.CurrentUser(c), uint(id))
		if err != nil {
			renderError(c, err)
			return
		}
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.FileName}))
		c.Data(http.StatusOK, blob.ContentTypePDF, d.Content)
	}
}
