package store

import (
	"context" // Request scoped queries
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"report_portal/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// ReportRepository reads and records report metadata
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository wraps a gorm handle
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ListAll returns every report joined with its client's name, in id order
func (r *ReportRepository) ListAll(ctx context.Context) ([]domain.ReportRow, error) {
	var rows []domain.ReportRow
	err := r.db.WithContext(ctx).
		Table("reports").
		Select("reports.id, reports.name, reports.file_name, reports.date, reports.client_id, users.name AS client_name").
		Joins("LEFT JOIN users ON users.id = reports.client_id").
		Order("reports.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list reports: %w", domain.ErrDatabase, err)
	}
	return rows, nil
}

// ListByClient returns the reports owned by one client, in id order
func (r *ReportRepository) ListByClient(ctx context.Context, clientID uint) ([]domain.Report, error) {
	var reports []domain.Report
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Order("id").Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("%w: list reports for client %d: %w", domain.ErrDatabase, clientID, err)
	}
	return reports, nil
}

// FindByID loads one report
func (r *ReportRepository) FindByID(ctx context.Context, id uint) (*domain.Report, error) {
	var report domain.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: find report %d: %w", domain.ErrDatabase, id, err)
	}
	return &report, nil
}

// Create inserts report metadata
func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("%w: create report: %w", domain.ErrDatabase, err)
	}
	return nil
}

// FileNamesByClient lists the object keys referenced by a client's reports
func (r *ReportRepository) FileNamesByClient(ctx context.Context, clientID uint) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&domain.Report{}).Where("client_id = ?", clientID).Pluck("file_name", &names).Error; err != nil {
		return nil, fmt.Errorf("%w: file names for client %d: %w", domain.ErrDatabase, clientID, err)
	}
	return names, nil
}
