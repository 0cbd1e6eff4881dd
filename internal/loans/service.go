package loans

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmarchetti-dev/revshare-backend/internal/startups"
	"github.com/dmarchetti-dev/revshare-backend/pkg/auth"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
)

// Service exposes companion loan offers to founders.
type Service interface {
	Get(ctx context.Context, principal auth.Principal, offerID uuid.UUID) (*models.LoanOffer, error)
	ListByStartup(ctx context.Context, principal auth.Principal, startupID uuid.UUID) ([]models.LoanOffer, error)
	List(ctx context.Context, principal auth.Principal, limit, offset int) ([]models.LoanOffer, error)
	Accept(ctx context.Context, principal auth.Principal, offerID uuid.UUID) (*models.LoanOffer, error)
	Decline(ctx context.Context, principal auth.Principal, offerID uuid.UUID) (*models.LoanOffer, error)
}

type service struct {
	repo     Repository
	startups startups.Repository
	logg     *logger.Logger
}

// NewService wires the loan offer service.
func NewService(repo Repository, startupRepo startups.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loan repository required")
	}
	if startupRepo == nil {
		return nil, fmt.Errorf("startup repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, startups: startupRepo, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, principal auth.Principal, offerID uuid.UUID) (*models.LoanOffer, error) {
	offer, err := s.loadAuthorized(ctx, principal, offerID)
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *service) ListByStartup(ctx context.Context, principal auth.Principal, startupID uuid.UUID) ([]models.LoanOffer, error) {
	if startupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startup id is required")
	}
	if err := s.authorizeStartup(ctx, principal, startupID); err != nil {
		return nil, err
	}
	offers, err := s.repo.ListByStartup(ctx, startupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing loan offers")
	}
	return offers, nil
}

func (s *service) List(ctx context.Context, principal auth.Principal, limit, offset int) ([]models.LoanOffer, error) {
	if principal.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins list all loan offers")
	}
	offers, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing loan offers")
	}
	return offers, nil
}

// Accept marks an offered loan as accepted. Disbursement is handled by the
// lending partner out of band.
func (s *service) Accept(ctx context.Context, principal auth.Principal, offerID uuid.UUID) (*models.LoanOffer, error) {
	return s.transition(ctx, principal, offerID, enums.LoanOfferStatusAccepted)
}

func (s *service) Decline(ctx context.Context, principal auth.Principal, offerID uuid.UUID) (*models.LoanOffer, error) {
	return s.transition(ctx, principal, offerID, enums.LoanOfferStatusDeclined)
}

func (s *service) transition(ctx context.Context, principal auth.Principal, offerID uuid.UUID, target enums.LoanOfferStatus) (*models.LoanOffer, error) {
	offer, err := s.loadAuthorized(ctx, principal, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status != enums.LoanOfferStatusOffered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("loan offer is %s, only offered loans can transition", offer.Status))
	}
	offer.Status = target
	if err := s.repo.Save(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating loan offer")
	}
	s.logg.Info(ctx, fmt.Sprintf("loan offer %s", target))
	return offer, nil
}

func (s *service) loadAuthorized(ctx context.Context, principal auth.Principal, offerID uuid.UUID) (*models.LoanOffer, error) {
	if offerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "loan offer id is required")
	}
	offer, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading loan offer")
	}
	if offer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "loan offer not found")
	}
	if err := s.authorizeStartup(ctx, principal, offer.StartupID); err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *service) authorizeStartup(ctx context.Context, principal auth.Principal, startupID uuid.UUID) error {
	if principal.Role == enums.RoleAdmin {
		return nil
	}
	startup, err := s.startups.GetByID(ctx, startupID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading startup")
	}
	if startup == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "startup not found")
	}
	if startup.FounderUserID != principal.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the startup's founder can access its loan offers")
	}
	return nil
}
