package startups

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
)

// Repository manages persistence for startups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, startup *models.Startup) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Startup, error)
	ListByFounder(ctx context.Context, founderUserID uuid.UUID) ([]models.Startup, error)
	List(ctx context.Context, limit, offset int) ([]models.Startup, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a startup repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, startup *models.Startup) error {
	return r.db.WithContext(ctx).Create(startup).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Startup, error) {
	var startup models.Startup
	if err := r.db.WithContext(ctx).First(&startup, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &startup, nil
}

func (r *repository) ListByFounder(ctx context.Context, founderUserID uuid.UUID) ([]models.Startup, error) {
	var startups []models.Startup
	if err := r.db.WithContext(ctx).
		Where("founder_user_id = ?", founderUserID).
		Order("created_at DESC").
		Find(&startups).Error; err != nil {
		return nil, err
	}
	return startups, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.Startup, error) {
	var startups []models.Startup
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&startups).Error; err != nil {
		return nil, err
	}
	return startups, nil
}
