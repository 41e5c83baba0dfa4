package service

import (
	"context" // Request scoped calls
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"slices"  // File name lookup
	"strings" // Input trimming
	"sync"    // Notification tracking
	"time"    // Report dates, URL validity

	"report_portal/internal/blob"    // Object storage
	"report_portal/internal/domain"  // Importing domain models
	"report_portal/internal/metrics" // Pipeline counters

	"github.com/sirupsen/logrus" // Logrus for structured logging
)

const notifyTimeout = 30 * time.Second

// ReportView is what a listing renders
type ReportView struct {
	Admin   bool               // Admin layout with upload form
	Reports []domain.ReportRow // Visible reports
	Clients []domain.User      // Upload form choices (admin only)
	Client  *domain.User       // Caller's profile (client only)
}

// UploadInput carries one multipart upload
type UploadInput struct {
	ClientID     uint   // Owning client
	ReportName   string // Display name
	FileName     string // Explicit object key, optional
	OriginalName string // Name of the submitted file, default key
	Content      []byte // PDF bytes
	Size         int64  // Declared size
}

// Download is a fetched report
type Download struct {
	FileName string // Name for Content-Disposition
	Content  []byte // Report bytes
}

// Orphan is a blob no report row points at
type Orphan struct {
	ClientID uint      // Container owner
	Key      string    // Object key
	Modified time.Time // Last write
}

// ReportService orchestrates listing, upload, download and reconciliation
type ReportService struct {
	users    UserStore
	reports  ReportStore
	blobs    blob.Store
	fetcher  BlobFetcher
	notifier Notifier
	metrics  *metrics.Metrics
	urlTTL   time.Duration
	now      func() time.Time
	pending  sync.WaitGroup // In-flight notifications
}

// NewReportService wires the stores; urlTTL bounds signed read URLs
func NewReportService(users UserStore, reports ReportStore, blobs blob.Store, fetcher BlobFetcher,
	notifier Notifier, m *metrics.Metrics, urlTTL time.Duration) *ReportService {
	return &ReportService{
		users:    users,
		reports:  reports,
		blobs:    blobs,
		fetcher:  fetcher,
		notifier: notifier,
		metrics:  m,
		urlTTL:   urlTTL,
		now:      time.Now,
	}
}

// ListReports returns every report for admins and only the caller's own
// reports for clients. Any other identity is ErrUnauthorized.
func (s *ReportService) ListReports(ctx context.Context, user *domain.SessionUser) (*ReportView, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := domain.Authorize(user, domain.ActionListAllReports, nil); err == nil {
		rows, err := s.reports.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		clients, err := s.users.ListClients(ctx)
		if err != nil {
			return nil, err
		}
		return &ReportView{Admin: true, Reports: rows, Clients: clients}, nil
	}
	if err := domain.Authorize(user, domain.ActionListOwnReports, &domain.Resource{OwnerID: user.ID}); err != nil {
		return nil, domain.ErrUnauthorized
	}
	client, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized // Session outlived its user
		}
		return nil, err
	}
	own, err := s.reports.ListByClient(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.ReportRow, 0, len(own))
	for _, r := range own {
		if r.ClientID != user.ID {
			continue // Never render another client's report
		}
		rows = append(rows, domain.ReportRow{Report: r, ClientName: client.Name})
	}
	return &ReportView{Reports: rows, Client: client}, nil
}

// ListClients returns the client directory; admins only
func (s *ReportService) ListClients(ctx context.Context, user *domain.SessionUser) ([]domain.User, error) {
	if err := domain.Authorize(user, domain.ActionListClients, nil); err != nil {
		return nil, err
	}
	return s.users.ListClients(ctx)
}

// UploadReport writes the blob, then the metadata row, then notifies the
// client in the background. A failed row insert leaves the blob behind; see
// ReconcileOrphans.
func (s *ReportService) UploadReport(ctx context.Context, user *domain.SessionUser, in UploadInput) (*domain.Report, error) {
	if err := domain.Authorize(user, domain.ActionUploadReport, nil); err != nil {
		s.metrics.IncUpload(metrics.ResultDenied)
		return nil, domain.ErrForbidden
	}
	in.ReportName = strings.TrimSpace(in.ReportName)
	fileName := strings.TrimSpace(in.FileName)
	if fileName == "" {
		fileName = strings.TrimSpace(in.OriginalName)
	}
	switch {
	case in.ClientID == 0:
		return nil, fmt.Errorf("%w: clientId is required", domain.ErrInvalidInput)
	case in.ReportName == "":
		return nil, fmt.Errorf("%w: reportName is required", domain.ErrInvalidInput)
	case in.Content == nil:
		return nil, fmt.Errorf("%w: reportFile is required", domain.ErrInvalidInput)
	}
	if err := blob.ValidateKey(fileName); err != nil {
		return nil, fmt.Errorf("%w: fileName %q is not usable", domain.ErrInvalidInput, fileName)
	}

	client, err := s.users.FindByID(ctx, in.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown client %d", domain.ErrInvalidInput, in.ClientID)
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, fmt.Errorf("%w: user %d is not a client", domain.ErrInvalidInput, in.ClientID)
	}
	existing, err := s.reports.FileNamesByClient(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(existing, fileName) {
		// An earlier report would start serving the new bytes
		return nil, fmt.Errorf("%w: fileName %q is already used by another report", domain.ErrInvalidInput, fileName)
	}

	fields := logrus.Fields{
		"admin_id":  user.ID,     // Uploading admin
		"client_id": in.ClientID, // Owning client
		"file_name": fileName,    // Object key
		"size":      in.Size,     // Declared upload size
	}

	container := domain.ContainerName(in.ClientID)
	if err := s.blobs.Put(ctx, container, fileName, in.Content, blob.ContentTypePDF); err != nil {
		logrus.WithFields(fields).WithError(err).Error("Blob upload failed")
		s.metrics.IncUpload(metrics.ResultFailure)
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	report := &domain.Report{
		Name:     in.ReportName,
		FileName: fileName,
		Date:     s.now().UTC(),
		ClientID: in.ClientID,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		// The blob stays in place until the reconciliation sweep removes it
		logrus.WithFields(fields).WithError(err).Error("Report metadata insert failed after blob upload")
		s.metrics.IncUpload(metrics.ResultFailure)
		if !errors.Is(err, domain.ErrDatabase) {
			err = fmt.Errorf("%w: %w", domain.ErrDatabase, err)
		}
		return nil, err
	}

	logrus.WithFields(fields).WithField("report_id", report.ID).Info("Report uploaded")
	s.metrics.IncUpload(metrics.ResultSuccess)
	s.notifyAsync(ctx, client, report)
	return report, nil
}

func (s *ReportService) notifyAsync(ctx context.Context, client *domain.User, report *domain.Report) {
	if s.notifier == nil {
		return
	}
	snapshot := *report // Callers may reuse the returned report
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.ReportUploaded(nctx, client, &snapshot); err != nil {
			logrus.WithFields(logrus.Fields{
				"client_id": client.ID,   // Recipient
				"report_id": snapshot.ID, // Report announced
				"error":     err.Error(), // Error message
			}).Warn("Report notification failed")
			s.metrics.IncNotification(metrics.ResultFailure)
			return
		}
		s.metrics.IncNotification(metrics.ResultSuccess)
	}()
}

// Wait blocks until background notifications have finished
func (s *ReportService) Wait() {
	s.pending.Wait()
}

// DownloadReport returns the report bytes when the caller is an admin or the
// report's owner. Bytes are read through a short-lived signed URL.
func (s *ReportService) DownloadReport(ctx context.Context, user *domain.SessionUser, reportID uint) (*Download, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(user, domain.ActionDownload, &domain.Resource{OwnerID: report.ClientID}); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id":   user.ID,         // Caller
			"report_id": report.ID,       // Requested report
			"client_id": report.ClientID, // Owner
		}).Warn("Download denied")
		s.metrics.IncDownload(metrics.ResultDenied)
		return nil, domain.ErrForbidden
	}

	container := domain.ContainerName(report.ClientID)
	url, err := s.blobs.SignedURL(ctx, container, report.FileName, s.urlTTL)
	if err != nil {
		s.metrics.IncDownload(metrics.ResultFailure)
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	content, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"report_id": report.ID,   // Requested report
			"container": container,   // Blob container
			"error":     err.Error(), // Error message
		}).Error("Error fetching PDF from storage")
		s.metrics.IncDownload(metrics.ResultFailure)
		if !errors.Is(err, domain.ErrStorage) {
			err = fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
		return nil, err
	}
	s.metrics.IncDownload(metrics.ResultSuccess)
	return &Download{FileName: report.FileName, Content: content}, nil
}

// ReconcileOrphans finds blobs older than olderThan that no report row
// references and deletes them unless dryRun is set.
func (s *ReportService) ReconcileOrphans(ctx context.Context, olderThan time.Duration, dryRun bool) ([]Orphan, error) {
	clients, err := s.users.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := s.now().Add(-olderThan)
	var orphans []Orphan
	for _, c := range clients {
		container := domain.ContainerName(c.ID)
		infos, err := s.blobs.List(ctx, container)
		if err != nil {
			return orphans, fmt.Errorf("%w: %w", domain.ErrStorage, err)
		}
		if len(infos) == 0 {
			continue
		}
		names, err := s.reports.FileNamesByClient(ctx, c.ID)
		if err != nil {
			return orphans, err
		}
		referenced := make(map[string]struct{}, len(names))
		for _, n := range names {
			referenced[n] = struct{}{}
		}
		for _, info := range infos {
			if _, ok := referenced[info.Key]; ok || info.LastModified.After(cutoff) {
				continue
			}
			orphans = append(orphans, Orphan{ClientID: c.ID, Key: info.Key, Modified: info.LastModified})
			if dryRun {
				continue
			}
			if err := s.blobs.Delete(ctx, container, info.Key); err != nil {
				return orphans, fmt.Errorf("%w: %w", domain.ErrStorage, err)
			}
			logrus.WithFields(logrus.Fields{
				"container": container, // Blob container
				"key":       info.Key,  // Removed object
			}).Info("Removed orphaned blob")
		}
	}
	return orphans, nil
}
