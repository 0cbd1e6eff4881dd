package investments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/internal/ledger"
	"github.com/dmarchetti-dev/revshare-backend/internal/payments"
	"github.com/dmarchetti-dev/revshare-backend/internal/rounds"
	"github.com/dmarchetti-dev/revshare-backend/pkg/auth"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
	"github.com/dmarchetti-dev/revshare-backend/pkg/metrics"
)

// Service is the subscription ledger and contract factory. Reserve is the
// only write path: it admits an investment against the round cap, settles the
// provider charge, and originates the contract snapshot.
type Service interface {
	Reserve(ctx context.Context, principal auth.Principal, input ReserveInput) (*models.Contract, error)
	GetContract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error)
	ListContractsByInvestor(ctx context.Context, investorUserID uuid.UUID) ([]models.Contract, error)
	ListByInvestor(ctx context.Context, investorUserID uuid.UUID) ([]models.Investment, error)
}

type service struct {
	db             *gorm.DB
	repo           Repository
	contracts      ContractRepository
	rounds         rounds.Repository
	ledger         ledger.Service
	provider       payments.Provider
	platformFeeBps int64
	metrics        *metrics.EngineMetrics
	logg           *logger.Logger
}

// ReserveInput is an investor's subscription attempt against a round.
type ReserveInput struct {
	RoundID     uuid.UUID `json:"round_id"`
	AmountCents int64     `json:"amount_cents"`
}

// NewService wires the investment service with its collaborators.
func NewService(
	db *gorm.DB,
	repo Repository,
	contracts ContractRepository,
	roundRepo rounds.Repository,
	ledgerSvc ledger.Service,
	provider payments.Provider,
	platformFeeBps int64,
	engineMetrics *metrics.EngineMetrics,
	logg *logger.Logger,
) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if repo == nil {
		return nil, fmt.Errorf("investment repository required")
	}
	if contracts == nil {
		return nil, fmt.Errorf("contract repository required")
	}
	if roundRepo == nil {
		return nil, fmt.Errorf("round repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if platformFeeBps < 0 || platformFeeBps > 10_000 {
		return nil, fmt.Errorf("platform fee bps out of range: %d", platformFeeBps)
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:             db,
		repo:           repo,
		contracts:      contracts,
		rounds:         roundRepo,
		ledger:         ledgerSvc,
		provider:       provider,
		platformFeeBps: platformFeeBps,
		metrics:        engineMetrics,
		logg:           logg,
	}, nil
}

// Reserve runs in three phases. The first transaction holds the round row
// lock across the capacity check and the reservation insert. The provider
// charge happens after that lock is released; a failure deletes the
// reservation. The second transaction attaches the payment reference,
// originates the contract, and writes the ledger entries.
func (s *service) Reserve(ctx context.Context, principal auth.Principal, input ReserveInput) (*models.Contract, error) {
	if input.RoundID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "round id is required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "investment amount must be positive")
	}
	if principal.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "investor identity is required")
	}

	ctx = s.logg.WithRoundID(ctx, input.RoundID.String())
	ctx = s.logg.WithUserID(ctx, principal.ID.String())

	var (
		round      *models.Round
		investment *models.Investment
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		round, err = s.rounds.WithTx(tx).GetByIDLocked(ctx, input.RoundID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "locking round")
		}
		if round == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "round not found")
		}
		if round.Status != enums.RoundStatusPublished {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("round is %s, only published rounds accept investments", round.Status))
		}
		if round.SelectedTier == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "round has no selected tier")
		}

		committed, err := s.repo.WithTx(tx).SumCommittedByRound(ctx, round.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "summing committed amounts")
		}
		if committed+input.AmountCents > round.MaxRaiseCents {
			s.metrics.IncCapacityRejection(round.ID.String())
			return pkgerrors.New(pkgerrors.CodeCapacityExceeded, "round capacity exceeded").
				WithDetails(map[string]any{
					"max_raise_cents": round.MaxRaiseCents,
					"committed_cents": committed,
					"remaining_cents": round.MaxRaiseCents - committed,
				})
		}

		investment = &models.Investment{
			ID:             uuid.New(),
			RoundID:        round.ID,
			InvestorUserID: principal.ID,
			AmountCents:    input.AmountCents,
		}
		if err := s.repo.WithTx(tx).Create(ctx, investment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating reservation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	paymentRef, err := s.provider.Charge(ctx, principal.ID, input.AmountCents)
	if err != nil {
		s.compensate(ctx, investment.ID)
		s.metrics.IncInvestmentFinalized("provider_failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "charging investor")
	}

	var contract *models.Contract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).SetPaymentID(ctx, investment.ID, paymentRef); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "attaching payment reference")
		}
		investment.PaymentID = paymentRef

		tier, err := s.rounds.WithTx(tx).GetTierOption(ctx, round.ID, *round.SelectedTier)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading selected tier")
		}
		if tier == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "selected tier has no generated option")
		}

		contract = originateContract(investment, tier, investment.CreatedAt)
		if err := s.contracts.WithTx(tx).Create(ctx, contract); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "originating contract")
		}

		metadata, _ := json.Marshal(map[string]string{"payment_id": paymentRef})
		txLedger := s.ledger.WithTx(tx)
		if _, err := txLedger.Record(ctx, ledger.RecordEntryInput{
			Type:        enums.LedgerEntryTypeInvestment,
			AmountCents: investment.AmountCents,
			ActorUserID: &principal.ID,
			StartupID:   &round.StartupID,
			RoundID:     &round.ID,
			ContractID:  &contract.ID,
			Metadata:    metadata,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "recording investment entry")
		}

		feeCents := investment.AmountCents * s.platformFeeBps / 10_000
		if feeCents > 0 {
			if _, err := txLedger.Record(ctx, ledger.RecordEntryInput{
				Type:        enums.LedgerEntryTypePlatformFee,
				AmountCents: feeCents,
				ActorUserID: &principal.ID,
				StartupID:   &round.StartupID,
				RoundID:     &round.ID,
				ContractID:  &contract.ID,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "recording platform fee entry")
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.IncInvestmentFinalized("finalize_failed")
		return nil, err
	}

	s.metrics.IncInvestmentFinalized("succeeded")
	s.logg.Info(ctx, "investment reserved and contract originated")
	return contract, nil
}

// compensate removes an unsettled reservation after a provider failure so the
// round's committed total drops back. Failure here only strands headroom
// until cleanup; it never double-charges.
func (s *service) compensate(ctx context.Context, investmentID uuid.UUID) {
	if err := s.repo.Delete(ctx, investmentID); err != nil {
		s.logg.Error(ctx, "failed to release reservation after provider failure", err)
	}
}

func (s *service) GetContract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	if contractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id is required")
	}
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading contract")
	}
	if contract == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
	}
	return contract, nil
}

func (s *service) ListContractsByInvestor(ctx context.Context, investorUserID uuid.UUID) ([]models.Contract, error) {
	if investorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "investor user id is required")
	}
	contracts, err := s.contracts.ListByInvestor(ctx, investorUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing contracts")
	}
	return contracts, nil
}

func (s *service) ListByInvestor(ctx context.Context, investorUserID uuid.UUID) ([]models.Investment, error) {
	if investorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "investor user id is required")
	}
	investments, err := s.repo.ListByInvestor(ctx, investorUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing investments")
	}
	return investments, nil
}
