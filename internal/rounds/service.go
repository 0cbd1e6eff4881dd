package rounds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmarchetti-dev/revshare-backend/internal/pricing"
	"github.com/dmarchetti-dev/revshare-backend/internal/startups"
	"github.com/dmarchetti-dev/revshare-backend/pkg/auth"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
)

// Service defines the round lifecycle: draft, tier generation, tier
// selection, publish, close.
type Service interface {
	CreateDraft(ctx context.Context, principal auth.Principal, input CreateRoundInput) (*models.Round, error)
	GenerateTiers(ctx context.Context, principal auth.Principal, roundID uuid.UUID, input GenerateTiersInput) ([]models.TierOption, error)
	SelectTier(ctx context.Context, principal auth.Principal, roundID uuid.UUID, tier enums.TierLevel) (*models.Round, error)
	Publish(ctx context.Context, principal auth.Principal, roundID uuid.UUID) (*models.Round, error)
	Close(ctx context.Context, principal auth.Principal, roundID uuid.UUID) (*models.Round, error)
	Get(ctx context.Context, roundID uuid.UUID) (*models.Round, error)
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Round, error)
	ListPublished(ctx context.Context, limit, offset int) ([]models.Round, error)
	ListTierOptions(ctx context.Context, roundID uuid.UUID) ([]models.TierOption, error)
}

type service struct {
	repo        Repository
	startupRepo startups.Repository
}

// CreateRoundInput captures the founder-supplied fields of a new draft round.
type CreateRoundInput struct {
	StartupID     uuid.UUID `json:"startup_id"`
	Title         string    `json:"title"`
	MaxRaiseCents int64     `json:"max_raise_cents"`
}

// GenerateTiersInput carries the pricing parameters for a tier batch.
type GenerateTiersInput struct {
	RiskLevel                   enums.RiskLevel `json:"risk_level"`
	Stage                       enums.Stage     `json:"stage"`
	BaselineMonthlyRevenueCents *int64          `json:"baseline_monthly_revenue_cents,omitempty"`
}

// NewService wires a round service with its repositories.
func NewService(repo Repository, startupRepo startups.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("round repository required")
	}
	if startupRepo == nil {
		return nil, fmt.Errorf("startup repository required")
	}
	return &service{repo: repo, startupRepo: startupRepo}, nil
}

func (s *service) CreateDraft(ctx context.Context, principal auth.Principal, input CreateRoundInput) (*models.Round, error) {
	if input.StartupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startup id is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "round title is required")
	}
	if input.MaxRaiseCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max raise must be positive")
	}

	if err := s.authorizeStartup(ctx, principal, input.StartupID); err != nil {
		return nil, err
	}

	round := &models.Round{
		ID:            uuid.New(),
		StartupID:     input.StartupID,
		Title:         title,
		MaxRaiseCents: input.MaxRaiseCents,
		Status:        enums.RoundStatusDraft,
	}
	if err := s.repo.Create(ctx, round); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating round")
	}
	return round, nil
}

func (s *service) GenerateTiers(ctx context.Context, principal auth.Principal, roundID uuid.UUID, input GenerateTiersInput) ([]models.TierOption, error) {
	round, err := s.loadOwnedRound(ctx, principal, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != enums.RoundStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("tiers can only be generated while the round is draft, round is %s", round.Status))
	}

	quotes, err := pricing.PriceTiers(pricing.Input{
		MaxRaiseCents:               round.MaxRaiseCents,
		RiskLevel:                   input.RiskLevel,
		Stage:                       input.Stage,
		BaselineMonthlyRevenueCents: input.BaselineMonthlyRevenueCents,
	})
	if err != nil {
		return nil, err
	}

	options := make([]models.TierOption, 0, len(quotes))
	for _, quote := range quotes {
		options = append(options, models.TierOption{
			ID:                  uuid.New(),
			RoundID:             round.ID,
			Tier:                quote.Tier,
			RevenueShareBps:     quote.RevenueShareBps,
			TimeCapMonths:       quote.TimeCapMonths,
			PayoutCapMult:       quote.PayoutCapMult,
			MinHoldDays:         quote.MinHoldDays,
			ExitFeeBpsQuarterly: quote.ExitFeeBpsQuarterly,
			ExitFeeBpsOffcycle:  quote.ExitFeeBpsOffcycle,
			Explanation:         quote.Explanation,
		})
	}

	if err := s.repo.ReplaceTierOptions(ctx, round.ID, options); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "replacing tier batch")
	}
	return options, nil
}

func (s *service) SelectTier(ctx context.Context, principal auth.Principal, roundID uuid.UUID, tier enums.TierLevel) (*models.Round, error) {
	if !tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid tier %q", tier))
	}
	round, err := s.loadOwnedRound(ctx, principal, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != enums.RoundStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("tier can only be selected while the round is draft, round is %s", round.Status))
	}

	option, err := s.repo.GetTierOption(ctx, round.ID, tier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading tier option")
	}
	if option == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("round has no generated %s tier", tier))
	}

	round.SelectedTier = &tier
	if err := s.repo.Save(ctx, round); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "saving tier selection")
	}
	return round, nil
}

func (s *service) Publish(ctx context.Context, principal auth.Principal, roundID uuid.UUID) (*models.Round, error) {
	round, err := s.loadOwnedRound(ctx, principal, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != enums.RoundStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("only draft rounds can be published, round is %s", round.Status))
	}
	if round.SelectedTier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "a tier must be selected before publishing")
	}

	now := time.Now().UTC()
	round.Status = enums.RoundStatusPublished
	round.PublishedAt = &now
	if err := s.repo.Save(ctx, round); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "publishing round")
	}
	return round, nil
}

func (s *service) Close(ctx context.Context, principal auth.Principal, roundID uuid.UUID) (*models.Round, error) {
	round, err := s.loadOwnedRound(ctx, principal, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != enums.RoundStatusPublished {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("only published rounds can be closed, round is %s", round.Status))
	}

	round.Status = enums.RoundStatusClosed
	if err := s.repo.Save(ctx, round); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "closing round")
	}
	return round, nil
}

func (s *service) Get(ctx context.Context, roundID uuid.UUID) (*models.Round, error) {
	if roundID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "round id is required")
	}
	round, err := s.repo.GetByID(ctx, roundID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading round")
	}
	if round == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "round not found")
	}
	return round, nil
}

func (s *service) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Round, error) {
	if startupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startup id is required")
	}
	rounds, err := s.repo.ListByStartup(ctx, startupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing rounds")
	}
	return rounds, nil
}

func (s *service) ListPublished(ctx context.Context, limit, offset int) ([]models.Round, error) {
	rounds, err := s.repo.ListPublished(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing published rounds")
	}
	return rounds, nil
}

func (s *service) ListTierOptions(ctx context.Context, roundID uuid.UUID) ([]models.TierOption, error) {
	if _, err := s.Get(ctx, roundID); err != nil {
		return nil, err
	}
	options, err := s.repo.ListTierOptions(ctx, roundID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing tier options")
	}
	return options, nil
}

func (s *service) loadOwnedRound(ctx context.Context, principal auth.Principal, roundID uuid.UUID) (*models.Round, error) {
	round, err := s.Get(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeStartup(ctx, principal, round.StartupID); err != nil {
		return nil, err
	}
	return round, nil
}

func (s *service) authorizeStartup(ctx context.Context, principal auth.Principal, startupID uuid.UUID) error {
	if principal.Role == enums.RoleAdmin {
		return nil
	}
	startup, err := s.startupRepo.GetByID(ctx, startupID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading startup")
	}
	if startup == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "startup not found")
	}
	if startup.FounderUserID != principal.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the startup's founder can manage its rounds")
	}
	return nil
}
