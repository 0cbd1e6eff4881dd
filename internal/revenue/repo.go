package revenue

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
)

// Repository manages persistence for monthly revenue reports.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, report *models.RevenueReport) error
	GetByStartupMonth(ctx context.Context, startupID uuid.UUID, month string) (*models.RevenueReport, error)
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.RevenueReport, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a revenue report repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, report *models.RevenueReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *repository) GetByStartupMonth(ctx context.Context, startupID uuid.UUID, month string) (*models.RevenueReport, error) {
	var report models.RevenueReport
	if err := r.db.WithContext(ctx).
		First(&report, "startup_id = ? AND month = ?", startupID, month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

func (r *repository) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.RevenueReport, error) {
	var reports []models.RevenueReport
	if err := r.db.WithContext(ctx).
		Where("startup_id = ?", startupID).
		Order("month DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
