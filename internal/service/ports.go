// Package service implements the login, listing, upload and download use
// cases on top of the credential, report and blob stores.
package service

import (
	"context" // Request scoped calls

	"report_portal/internal/domain"  // Importing domain models
	"report_portal/internal/session" // Session records
)

// UserStore is the credential store contract
type UserStore interface {
	FindByUsername(ctx context.Context, username string) ([]domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	ListClients(ctx context.Context) ([]domain.User, error)
}

// ReportStore is the report metadata contract
type ReportStore interface {
	ListAll(ctx context.Context) ([]domain.ReportRow, error)
	ListByClient(ctx context.Context, clientID uint) ([]domain.Report, error)
	FindByID(ctx context.Context, id uint) (*domain.Report, error)
	Create(ctx context.Context, report *domain.Report) error
	FileNamesByClient(ctx context.Context, clientID uint) ([]string, error)
}

// Notifier announces new reports to their client
type Notifier interface {
	ReportUploaded(ctx context.Context, client *domain.User, report *domain.Report) error
}

// SessionStore creates and destroys sessions
type SessionStore interface {
	Create(ctx context.Context, user *domain.SessionUser) (*session.Session, error)
	Destroy(ctx context.Context, id string) error
}

// BlobFetcher downloads the content behind a signed URL
type BlobFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
