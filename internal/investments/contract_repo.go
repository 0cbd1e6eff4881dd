package investments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// ContractRepository manages persistence for originated contracts.
type ContractRepository interface {
	WithTx(tx *gorm.DB) ContractRepository
	Create(ctx context.Context, contract *models.Contract) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	GetByIDLocked(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	GetByInvestmentID(ctx context.Context, investmentID uuid.UUID) (*models.Contract, error)
	ListActiveByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Contract, error)
	ListByInvestor(ctx context.Context, investorUserID uuid.UUID) ([]models.Contract, error)
	Save(ctx context.Context, contract *models.Contract) error
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository returns a contract repository bound to the provided database.
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) WithTx(tx *gorm.DB) ContractRepository {
	if tx == nil {
		return r
	}
	return &contractRepository{db: tx}
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *contractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

// GetByIDLocked reads the contract under FOR UPDATE so balance updates
// serialize with concurrent distribution and exit settlement.
func (r *contractRepository) GetByIDLocked(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var contract models.Contract
	if err := query.First(&contract, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) GetByInvestmentID(ctx context.Context, investmentID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).First(&contract, "investment_id = ?", investmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &contract, nil
}

// ListActiveByStartup rolls contracts up through their investment's round to
// the owning startup.
func (r *contractRepository) ListActiveByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Contract, error) {
	var contracts []models.Contract
	if err := r.db.WithContext(ctx).
		Joins("JOIN investments ON investments.id = contracts.investment_id").
		Joins("JOIN rounds ON rounds.id = investments.round_id").
		Where("rounds.startup_id = ? AND contracts.status = ?", startupID, enums.ContractStatusActive).
		Order("contracts.start_date ASC").
		Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *contractRepository) ListByInvestor(ctx context.Context, investorUserID uuid.UUID) ([]models.Contract, error) {
	var contracts []models.Contract
	if err := r.db.WithContext(ctx).
		Joins("JOIN investments ON investments.id = contracts.investment_id").
		Where("investments.investor_user_id = ?", investorUserID).
		Order("contracts.start_date DESC").
		Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *contractRepository) Save(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}
