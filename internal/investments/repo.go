package investments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
)

// Repository manages persistence for investments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, investment *models.Investment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Investment, error)
	SumCommittedByRound(ctx context.Context, roundID uuid.UUID) (int64, error)
	SetPaymentID(ctx context.Context, id uuid.UUID, paymentID string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByInvestor(ctx context.Context, investorUserID uuid.UUID) ([]models.Investment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an investment repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, investment *models.Investment) error {
	return r.db.WithContext(ctx).Create(investment).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Investment, error) {
	var investment models.Investment
	if err := r.db.WithContext(ctx).First(&investment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &investment, nil
}

// SumCommittedByRound totals every reservation against the round, including
// ones still awaiting their payment reference. Callers must hold the round
// lock for the result to be a safe capacity check.
func (r *repository) SumCommittedByRound(ctx context.Context, roundID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Investment{}).
		Where("round_id = ?", roundID).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) SetPaymentID(ctx context.Context, id uuid.UUID, paymentID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Investment{}).
		Where("id = ?", id).
		Update("payment_id", paymentID).Error
}

// Delete removes a reservation whose provider charge failed. This is the only
// delete path; settled investments are immutable.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Investment{}, "id = ?", id).Error
}

func (r *repository) ListByInvestor(ctx context.Context, investorUserID uuid.UUID) ([]models.Investment, error) {
	var investments []models.Investment
	if err := r.db.WithContext(ctx).
		Where("investor_user_id = ?", investorUserID).
		Order("created_at DESC").
		Find(&investments).Error; err != nil {
		return nil, err
	}
	return investments, nil
}
