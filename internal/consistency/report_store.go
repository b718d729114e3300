package consistency

import (
	"context"

	"gorm.io/gorm"

	"github.com/campuslink/backend/internal/models"
)

// ReportStore persists drift reports for later inspection.
type ReportStore interface {
	Save(ctx context.Context, report *models.DriftReport) error
	ListRecent(ctx context.Context, limit int) ([]models.DriftReport, error)
}

// PostgresReportStore implements ReportStore on PostgreSQL via GORM.
type PostgresReportStore struct {
	db *gorm.DB
}

// NewPostgresReportStore creates a new PostgresReportStore.
func NewPostgresReportStore(db *gorm.DB) *PostgresReportStore {
	return &PostgresReportStore{db: db}
}

// Save inserts a drift report row.
func (s *PostgresReportStore) Save(ctx context.Context, report *models.DriftReport) error {
	return s.db.WithContext(ctx).Create(report).Error
}

// ListRecent returns the most recent drift reports.
func (s *PostgresReportStore) ListRecent(ctx context.Context, limit int) ([]models.DriftReport, error) {
	var reports []models.DriftReport
	err := s.db.WithContext(ctx).Order("detected_at DESC").Limit(limit).Find(&reports).Error
	return reports, err
}
