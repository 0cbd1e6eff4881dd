package distributions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
)

// Repository manages persistence for distributions and their payouts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, distribution *models.Distribution) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Distribution, error)
	GetByStartupMonth(ctx context.Context, startupID uuid.UUID, month string) (*models.Distribution, error)
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Distribution, error)
	Save(ctx context.Context, distribution *models.Distribution) error
	CreatePayout(ctx context.Context, payout *models.Payout) error
	SetPayoutRef(ctx context.Context, payoutID uuid.UUID, ref string) error
	DeletePayout(ctx context.Context, payoutID uuid.UUID) error
	PayoutExists(ctx context.Context, contractID, distributionID uuid.UUID) (bool, error)
	ListPayouts(ctx context.Context, distributionID uuid.UUID) ([]models.Payout, error)
	SumPayouts(ctx context.Context, distributionID uuid.UUID) (int64, error)
	SumAllPayouts(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a distribution repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, distribution *models.Distribution) error {
	return r.db.WithContext(ctx).Create(distribution).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Distribution, error) {
	var distribution models.Distribution
	if err := r.db.WithContext(ctx).First(&distribution, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distribution, nil
}

func (r *repository) GetByStartupMonth(ctx context.Context, startupID uuid.UUID, month string) (*models.Distribution, error) {
	var distribution models.Distribution
	if err := r.db.WithContext(ctx).
		First(&distribution, "startup_id = ? AND month = ?", startupID, month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &distribution, nil
}

func (r *repository) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Distribution, error) {
	var distributions []models.Distribution
	if err := r.db.WithContext(ctx).
		Where("startup_id = ?", startupID).
		Order("month DESC").
		Find(&distributions).Error; err != nil {
		return nil, err
	}
	return distributions, nil
}

func (r *repository) Save(ctx context.Context, distribution *models.Distribution) error {
	return r.db.WithContext(ctx).Save(distribution).Error
}

func (r *repository) CreatePayout(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) SetPayoutRef(ctx context.Context, payoutID uuid.UUID, ref string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ?", payoutID).
		Update("payout_ref", ref).Error
}

func (r *repository) DeletePayout(ctx context.Context, payoutID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.Payout{}, "id = ?", payoutID).Error
}

func (r *repository) PayoutExists(ctx context.Context, contractID, distributionID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("contract_id = ? AND distribution_id = ?", contractID, distributionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) ListPayouts(ctx context.Context, distributionID uuid.UUID) ([]models.Payout, error) {
	var payouts []models.Payout
	if err := r.db.WithContext(ctx).
		Where("distribution_id = ?", distributionID).
		Order("created_at ASC").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repository) SumPayouts(ctx context.Context, distributionID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("distribution_id = ?", distributionID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// SumAllPayouts supports ledger reconciliation checks.
func (r *repository) SumAllPayouts(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
