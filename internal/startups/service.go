package startups

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
)

// Service defines startup directory operations.
type Service interface {
	Create(ctx context.Context, input CreateStartupInput) (*models.Startup, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Startup, error)
	ListByFounder(ctx context.Context, founderUserID uuid.UUID) ([]models.Startup, error)
	List(ctx context.Context, limit, offset int) ([]models.Startup, error)
}

type service struct {
	repo Repository
}

// CreateStartupInput captures the fields a founder supplies when registering
// a company.
type CreateStartupInput struct {
	FounderUserID uuid.UUID `json:"founder_user_id"`
	Name          string    `json:"name"`
	Country       string    `json:"country"`
	Website       *string   `json:"website"`
	Description   *string   `json:"description"`
}

// NewService wires a startup service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("startup repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateStartupInput) (*models.Startup, error) {
	if input.FounderUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "founder user id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startup name is required")
	}
	country := strings.ToUpper(strings.TrimSpace(input.Country))
	if country == "" {
		country = "CA"
	}
	if len(country) != 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "country must be a two-letter code")
	}

	startup := &models.Startup{
		ID:            uuid.New(),
		FounderUserID: input.FounderUserID,
		Name:          name,
		Country:       country,
		Website:       input.Website,
		Description:   input.Description,
	}
	if err := s.repo.Create(ctx, startup); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating startup")
	}
	return startup, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Startup, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startup id is required")
	}
	startup, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading startup")
	}
	if startup == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "startup not found")
	}
	return startup, nil
}

func (s *service) ListByFounder(ctx context.Context, founderUserID uuid.UUID) ([]models.Startup, error) {
	if founderUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "founder user id is required")
	}
	startups, err := s.repo.ListByFounder(ctx, founderUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing startups")
	}
	return startups, nil
}

func (s *service) List(ctx context.Context, limit, offset int) ([]models.Startup, error) {
	startups, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing startups")
	}
	return startups, nil
}
