package rounds

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// Repository manages persistence for rounds and their tier option batches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, round *models.Round) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Round, error)
	GetByIDLocked(ctx context.Context, id uuid.UUID) (*models.Round, error)
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Round, error)
	ListPublished(ctx context.Context, limit, offset int) ([]models.Round, error)
	Save(ctx context.Context, round *models.Round) error
	ReplaceTierOptions(ctx context.Context, roundID uuid.UUID, options []models.TierOption) error
	ListTierOptions(ctx context.Context, roundID uuid.UUID) ([]models.TierOption, error)
	GetTierOption(ctx context.Context, roundID uuid.UUID, tier enums.TierLevel) (*models.TierOption, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a round repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, round *models.Round) error {
	return r.db.WithContext(ctx).Create(round).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	var round models.Round
	if err := r.db.WithContext(ctx).First(&round, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &round, nil
}

// GetByIDLocked reads the round under FOR UPDATE so concurrent subscription
// checks against the same round serialize. SQLite has no row locks; its
// single-writer model covers the tests.
func (r *repository) GetByIDLocked(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var round models.Round
	if err := query.First(&round, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &round, nil
}

func (r *repository) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Round, error) {
	var rounds []models.Round
	if err := r.db.WithContext(ctx).
		Where("startup_id = ?", startupID).
		Order("created_at DESC").
		Find(&rounds).Error; err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *repository) ListPublished(ctx context.Context, limit, offset int) ([]models.Round, error) {
	var rounds []models.Round
	query := r.db.WithContext(ctx).
		Where("status = ?", enums.RoundStatusPublished).
		Order("published_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&rounds).Error; err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *repository) Save(ctx context.Context, round *models.Round) error {
	return r.db.WithContext(ctx).Save(round).Error
}

// ReplaceTierOptions swaps a round's whole tier batch in one transaction.
func (r *repository) ReplaceTierOptions(ctx context.Context, roundID uuid.UUID, options []models.TierOption) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("round_id = ?", roundID).Delete(&models.TierOption{}).Error; err != nil {
			return err
		}
		if len(options) == 0 {
			return nil
		}
		return tx.Create(&options).Error
	})
}

func (r *repository) ListTierOptions(ctx context.Context, roundID uuid.UUID) ([]models.TierOption, error) {
	var options []models.TierOption
	if err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("CASE tier WHEN 'low' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END").
		Find(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func (r *repository) GetTierOption(ctx context.Context, roundID uuid.UUID, tier enums.TierLevel) (*models.TierOption, error) {
	var option models.TierOption
	if err := r.db.WithContext(ctx).
		First(&option, "round_id = ? AND tier = ?", roundID, tier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &option, nil
}
