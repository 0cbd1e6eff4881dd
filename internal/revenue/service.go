package revenue

import (
	"context"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/dmarchetti-dev/revshare-backend/internal/startups"
	"github.com/dmarchetti-dev/revshare-backend/pkg/auth"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
)

var monthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidateMonth checks the YYYY-MM month key used across reports and
// distributions.
func ValidateMonth(month string) error {
	if !monthRe.MatchString(month) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("month must be YYYY-MM, got %q", month))
	}
	return nil
}

// Service defines founder revenue reporting.
type Service interface {
	Submit(ctx context.Context, principal auth.Principal, input SubmitReportInput) (*models.RevenueReport, error)
	GetByStartupMonth(ctx context.Context, startupID uuid.UUID, month string) (*models.RevenueReport, error)
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.RevenueReport, error)
}

type service struct {
	repo        Repository
	startupRepo startups.Repository
}

// SubmitReportInput is one month of founder-reported gross revenue.
type SubmitReportInput struct {
	StartupID         uuid.UUID `json:"startup_id"`
	Month             string    `json:"month"`
	GrossRevenueCents int64     `json:"gross_revenue_cents"`
}

// NewService wires a revenue service with its repositories.
func NewService(repo Repository, startupRepo startups.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("revenue repository required")
	}
	if startupRepo == nil {
		return nil, fmt.Errorf("startup repository required")
	}
	return &service{repo: repo, startupRepo: startupRepo}, nil
}

func (s *service) Submit(ctx context.Context, principal auth.Principal, input SubmitReportInput) (*models.RevenueReport, error) {
	if input.StartupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startup id is required")
	}
	if err := ValidateMonth(input.Month); err != nil {
		return nil, err
	}
	if input.GrossRevenueCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gross revenue cannot be negative")
	}

	if principal.Role != enums.RoleAdmin {
		startup, err := s.startupRepo.GetByID(ctx, input.StartupID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading startup")
		}
		if startup == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "startup not found")
		}
		if startup.FounderUserID != principal.ID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the startup's founder can report revenue")
		}
	}

	report := &models.RevenueReport{
		ID:                uuid.New(),
		StartupID:         input.StartupID,
		Month:             input.Month,
		GrossRevenueCents: input.GrossRevenueCents,
		ReportedBy:        principal.ID,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("revenue already reported for %s", input.Month))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating revenue report")
	}
	return report, nil
}

func (s *service) GetByStartupMonth(ctx context.Context, startupID uuid.UUID, month string) (*models.RevenueReport, error) {
	if startupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startup id is required")
	}
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}
	report, err := s.repo.GetByStartupMonth(ctx, startupID, month)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading revenue report")
	}
	if report == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("no revenue report for %s", month))
	}
	return report, nil
}

func (s *service) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.RevenueReport, error) {
	if startupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startup id is required")
	}
	reports, err := s.repo.ListByStartup(ctx, startupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing revenue reports")
	}
	return reports, nil
}
