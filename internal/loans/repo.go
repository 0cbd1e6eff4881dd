package loans

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
)

// Repository persists companion loan offers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.LoanOffer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LoanOffer, error)
	GetByExitRequestID(ctx context.Context, exitRequestID uuid.UUID) (*models.LoanOffer, error)
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.LoanOffer, error)
	List(ctx context.Context, limit, offset int) ([]models.LoanOffer, error)
	Save(ctx context.Context, offer *models.LoanOffer) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a gorm-backed loan offer repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, offer *models.LoanOffer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.LoanOffer, error) {
	var offer models.LoanOffer
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) GetByExitRequestID(ctx context.Context, exitRequestID uuid.UUID) (*models.LoanOffer, error) {
	var offer models.LoanOffer
	err := r.db.WithContext(ctx).
		Where("exit_request_id = ?", exitRequestID).
		First(&offer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.LoanOffer, error) {
	var offers []models.LoanOffer
	err := r.db.WithContext(ctx).
		Where("startup_id = ?", startupID).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.LoanOffer, error) {
	var offers []models.LoanOffer
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *repository) Save(ctx context.Context, offer *models.LoanOffer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}
