package distributions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/internal/investments"
	"github.com/dmarchetti-dev/revshare-backend/internal/ledger"
	"github.com/dmarchetti-dev/revshare-backend/internal/payments"
	"github.com/dmarchetti-dev/revshare-backend/internal/revenue"
	"github.com/dmarchetti-dev/revshare-backend/internal/startups"
	"github.com/dmarchetti-dev/revshare-backend/pkg/auth"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
	"github.com/dmarchetti-dev/revshare-backend/pkg/metrics"
	"github.com/dmarchetti-dev/revshare-backend/pkg/redis"
)

const lockScope = "distribution"

// Service runs monthly revenue-share distributions.
type Service interface {
	Run(ctx context.Context, principal auth.Principal, startupID uuid.UUID, month string) (*RunSummary, error)
	Get(ctx context.Context, distributionID uuid.UUID) (*RunSummary, error)
	ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Distribution, error)
}

// RunSummary reports the outcome of one distribution run. ContractFailures
// carries per-contract errors that did not abort the rest of the run.
type RunSummary struct {
	DistributionID   uuid.UUID       `json:"distribution_id"`
	StartupID        uuid.UUID       `json:"startup_id"`
	Month            string          `json:"month"`
	TotalCents       int64           `json:"total_cents"`
	Payouts          []models.Payout `json:"payouts"`
	ContractFailures error           `json:"-"`
}

type service struct {
	db          *gorm.DB
	repo        Repository
	contracts   investments.ContractRepository
	investments investments.Repository
	revenueRepo revenue.Repository
	startupRepo startups.Repository
	ledger      ledger.Service
	provider    payments.Provider
	locker      redis.Locker
	lockTTL     time.Duration
	metrics     *metrics.EngineMetrics
	logg        *logger.Logger
}

// NewService wires the distribution engine with its collaborators.
func NewService(
	gormDB *gorm.DB,
	repo Repository,
	contracts investments.ContractRepository,
	investmentRepo investments.Repository,
	revenueRepo revenue.Repository,
	startupRepo startups.Repository,
	ledgerSvc ledger.Service,
	provider payments.Provider,
	locker redis.Locker,
	lockTTL time.Duration,
	engineMetrics *metrics.EngineMetrics,
	logg *logger.Logger,
) (Service, error) {
	if gormDB == nil {
		return nil, fmt.Errorf("db required")
	}
	if repo == nil {
		return nil, fmt.Errorf("distribution repository required")
	}
	if contracts == nil {
		return nil, fmt.Errorf("contract repository required")
	}
	if investmentRepo == nil {
		return nil, fmt.Errorf("investment repository required")
	}
	if revenueRepo == nil {
		return nil, fmt.Errorf("revenue repository required")
	}
	if startupRepo == nil {
		return nil, fmt.Errorf("startup repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if locker == nil {
		return nil, fmt.Errorf("locker required")
	}
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:          gormDB,
		repo:        repo,
		contracts:   contracts,
		investments: investmentRepo,
		revenueRepo: revenueRepo,
		startupRepo: startupRepo,
		ledger:      ledgerSvc,
		provider:    provider,
		locker:      locker,
		lockTTL:     lockTTL,
		metrics:     engineMetrics,
		logg:        logg,
	}, nil
}

// Run executes one distribution cycle for (startup, month). The advisory
// lock plus the unique (startup, month) constraint collapse concurrent
// triggers into a single effective run. Each contract settles in its own
// transaction; the (contract, distribution) uniqueness makes a partial run
// resumable and a completed run a no-op.
func (s *service) Run(ctx context.Context, principal auth.Principal, startupID uuid.UUID, month string) (*RunSummary, error) {
	if startupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startup id is required")
	}
	if err := revenue.ValidateMonth(month); err != nil {
		return nil, err
	}

	startup, err := s.startupRepo.GetByID(ctx, startupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading startup")
	}
	if startup == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "startup not found")
	}
	if principal.Role != enums.RoleAdmin && startup.FounderUserID != principal.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the startup's founder or an admin can run distributions")
	}

	ctx = s.logg.WithStartupID(ctx, startupID.String())
	ctx = s.logg.WithField(ctx, "month", month)

	lockID := startupID.String() + ":" + month
	acquired, err := s.locker.AcquireLock(ctx, lockScope, lockID, s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "acquiring distribution lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a distribution run for this month is already in progress")
	}
	defer func() {
		if err := s.locker.ReleaseLock(ctx, lockScope, lockID); err != nil {
			s.logg.Error(ctx, "failed to release distribution lock", err)
		}
	}()

	started := time.Now()
	summary, err := s.run(ctx, principal, startupID, month)
	if err != nil {
		s.metrics.IncDistributionRun("failed")
		return nil, err
	}
	s.metrics.IncDistributionRun("completed")
	s.metrics.ObserveRunDuration("distribution", time.Since(started))
	s.logg.Info(ctx, "distribution run completed")
	return summary, nil
}

func (s *service) run(ctx context.Context, principal auth.Principal, startupID uuid.UUID, month string) (*RunSummary, error) {
	distribution, err := s.findOrCreateDistribution(ctx, principal, startupID, month)
	if err != nil {
		return nil, err
	}

	report, err := s.revenueRepo.GetByStartupMonth(ctx, startupID, month)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading revenue report")
	}
	if report == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("no revenue report for %s, report revenue before running a distribution", month))
	}

	contracts, err := s.contracts.ListActiveByStartup(ctx, startupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing active contracts")
	}

	var contractErrs error
	for i := range contracts {
		if err := s.settleContract(ctx, distribution, &contracts[i], report.GrossRevenueCents); err != nil {
			contractErrs = multierr.Append(contractErrs,
				fmt.Errorf("contract %s: %w", contracts[i].ID, err))
		}
	}

	total, err := s.repo.SumPayouts(ctx, distribution.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "totaling payouts")
	}
	distribution.TotalDistributedCents = total
	if err := s.repo.Save(ctx, distribution); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "saving distribution total")
	}

	payouts, err := s.repo.ListPayouts(ctx, distribution.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing payouts")
	}

	return &RunSummary{
		DistributionID:   distribution.ID,
		StartupID:        startupID,
		Month:            month,
		TotalCents:       total,
		Payouts:          payouts,
		ContractFailures: contractErrs,
	}, nil
}

func (s *service) findOrCreateDistribution(ctx context.Context, principal auth.Principal, startupID uuid.UUID, month string) (*models.Distribution, error) {
	existing, err := s.repo.GetByStartupMonth(ctx, startupID, month)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading distribution")
	}
	if existing != nil {
		return existing, nil
	}

	distribution := &models.Distribution{
		ID:        uuid.New(),
		StartupID: startupID,
		Month:     month,
		CreatedBy: principal.ID,
	}
	if err := s.repo.Create(ctx, distribution); err != nil {
		// concurrent run won the insert race; reuse its row
		if db.IsUniqueViolation(err) {
			existing, err = s.repo.GetByStartupMonth(ctx, startupID, month)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reloading distribution")
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating distribution")
	}
	return distribution, nil
}

// settleContract pays one contract's share for the month in three phases,
// like Reserve: the payout row and balance increment commit under the
// contract lock BEFORE the provider moves money, a provider failure deletes
// the reservation, and success attaches the reference and ledger entry. The
// provider is never called without a committed payout row backing it.
func (s *service) settleContract(ctx context.Context, distribution *models.Distribution, contract *models.Contract, grossRevenueCents int64) error {
	share := int64(contract.RevenueShareBps) * grossRevenueCents / 10_000

	investment, err := s.investments.GetByID(ctx, contract.InvestmentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading investment")
	}
	if investment == nil {
		return pkgerrors.New(pkgerrors.CodePersistence, "contract has no investment row")
	}

	var payout *models.Payout
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.repo.WithTx(tx).PayoutExists(ctx, contract.ID, distribution.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "checking existing payout")
		}
		if exists {
			return nil
		}

		locked, err := s.contracts.WithTx(tx).GetByIDLocked(ctx, contract.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "locking contract")
		}
		if locked == nil || locked.Status != enums.ContractStatusActive {
			return nil
		}

		amount := share
		if remaining := locked.RemainingCapCents(); amount > remaining {
			amount = remaining
		}
		if amount <= 0 {
			if locked.RemainingCapCents() == 0 {
				locked.Status = enums.ContractStatusCompleted
				if err := s.contracts.WithTx(tx).Save(ctx, locked); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "completing contract")
				}
			}
			return nil
		}

		payout = &models.Payout{
			ID:             uuid.New(),
			ContractID:     locked.ID,
			DistributionID: distribution.ID,
			AmountCents:    amount,
		}
		if err := s.repo.WithTx(tx).CreatePayout(ctx, payout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reserving payout")
		}

		locked.PaidToDateCents += amount
		if locked.PaidToDateCents >= locked.PayoutCapCents {
			locked.Status = enums.ContractStatusCompleted
		}
		if err := s.contracts.WithTx(tx).Save(ctx, locked); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating contract balance")
		}
		return nil
	})
	if err != nil {
		// concurrent run won the insert race; its row carries the payment
		if db.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	if payout == nil {
		return nil
	}

	payoutRef, err := s.provider.Payout(ctx, investment.InvestorUserID, payout.AmountCents)
	if err != nil {
		s.compensatePayout(ctx, payout)
		return pkgerrors.Wrap(pkgerrors.CodeProvider, err, "paying investor")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).SetPayoutRef(ctx, payout.ID, payoutRef); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "attaching payout reference")
		}
		payout.PayoutRef = payoutRef

		metadata, _ := json.Marshal(map[string]string{"payout_ref": payoutRef, "month": distribution.Month})
		if _, err := s.ledger.WithTx(tx).Record(ctx, ledger.RecordEntryInput{
			Type:        enums.LedgerEntryTypePayout,
			AmountCents: payout.AmountCents,
			ActorUserID: &investment.InvestorUserID,
			StartupID:   &distribution.StartupID,
			ContractID:  &payout.ContractID,
			Metadata:    metadata,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "recording payout entry")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.AddPayoutCents("payout", payout.AmountCents)
	return nil
}

// compensatePayout deletes an unsettled payout reservation after a provider
// failure and restores the contract balance so a rerun can pay again.
func (s *service) compensatePayout(ctx context.Context, payout *models.Payout) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.contracts.WithTx(tx).GetByIDLocked(ctx, payout.ContractID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "locking contract")
		}
		if err := s.repo.WithTx(tx).DeletePayout(ctx, payout.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "deleting payout reservation")
		}
		if locked == nil {
			return nil
		}
		locked.PaidToDateCents -= payout.AmountCents
		if locked.Status == enums.ContractStatusCompleted && locked.PaidToDateCents < locked.PayoutCapCents {
			locked.Status = enums.ContractStatusActive
		}
		if err := s.contracts.WithTx(tx).Save(ctx, locked); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "restoring contract balance")
		}
		return nil
	})
	if err != nil {
		s.logg.Error(ctx, "failed to release payout reservation after provider failure", err)
	}
}

func (s *service) Get(ctx context.Context, distributionID uuid.UUID) (*RunSummary, error) {
	if distributionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "distribution id is required")
	}
	distribution, err := s.repo.GetByID(ctx, distributionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading distribution")
	}
	if distribution == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "distribution not found")
	}
	payouts, err := s.repo.ListPayouts(ctx, distribution.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing payouts")
	}
	return &RunSummary{
		DistributionID: distribution.ID,
		StartupID:      distribution.StartupID,
		Month:          distribution.Month,
		TotalCents:     distribution.TotalDistributedCents,
		Payouts:        payouts,
	}, nil
}

func (s *service) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Distribution, error) {
	if startupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "startup id is required")
	}
	distributions, err := s.repo.ListByStartup(ctx, startupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing distributions")
	}
	return distributions, nil
}
