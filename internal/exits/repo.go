package exits

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// Repository manages persistence for exit requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.ExitRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ExitRequest, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.ExitRequest, error)
	HasOpenRequest(ctx context.Context, contractID uuid.UUID) (bool, error)
	Save(ctx context.Context, request *models.ExitRequest) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an exit request repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.ExitRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExitRequest, error) {
	var request models.ExitRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.ExitRequest, error) {
	var requests []models.ExitRequest
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("requested_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) HasOpenRequest(ctx context.Context, contractID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ExitRequest{}).
		Where("contract_id = ? AND status = ?", contractID, enums.ExitStatusRequested).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Save(ctx context.Context, request *models.ExitRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}
