package exits

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/internal/investments"
	"github.com/dmarchetti-dev/revshare-backend/internal/ledger"
	"github.com/dmarchetti-dev/revshare-backend/internal/loans"
	"github.com/dmarchetti-dev/revshare-backend/internal/payments"
	"github.com/dmarchetti-dev/revshare-backend/internal/rounds"
	"github.com/dmarchetti-dev/revshare-backend/pkg/auth"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
	"github.com/dmarchetti-dev/revshare-backend/pkg/metrics"
)

// referralFeeBps is the cross-sell referral fee recorded when an exit settles
// into a loan offer instead of cash.
const referralFeeBps = 100

// Service validates and settles exit requests.
type Service interface {
	Request(ctx context.Context, principal auth.Principal, input RequestExitInput) (*models.ExitRequest, error)
	Settle(ctx context.Context, principal auth.Principal, exitID uuid.UUID, method enums.SettlementMethod) (*models.ExitRequest, error)
	Reject(ctx context.Context, principal auth.Principal, exitID uuid.UUID) (*models.ExitRequest, error)
	Get(ctx context.Context, exitID uuid.UUID) (*models.ExitRequest, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.ExitRequest, error)
}

type service struct {
	db          *gorm.DB
	repo        Repository
	contracts   investments.ContractRepository
	investments investments.Repository
	rounds      rounds.Repository
	loans       loans.Repository
	ledger      ledger.Service
	provider    payments.Provider
	metrics     *metrics.EngineMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// RequestExitInput is an investor's request to liquidate a contract.
type RequestExitInput struct {
	ContractID uuid.UUID      `json:"contract_id"`
	ExitType   enums.ExitType `json:"exit_type"`
}

// NewService wires the exit settlement engine with its collaborators.
func NewService(
	gormDB *gorm.DB,
	repo Repository,
	contracts investments.ContractRepository,
	investmentRepo investments.Repository,
	roundRepo rounds.Repository,
	loanRepo loans.Repository,
	ledgerSvc ledger.Service,
	provider payments.Provider,
	engineMetrics *metrics.EngineMetrics,
	logg *logger.Logger,
) (Service, error) {
	if gormDB == nil {
		return nil, fmt.Errorf("db required")
	}
	if repo == nil {
		return nil, fmt.Errorf("exit repository required")
	}
	if contracts == nil {
		return nil, fmt.Errorf("contract repository required")
	}
	if investmentRepo == nil {
		return nil, fmt.Errorf("investment repository required")
	}
	if roundRepo == nil {
		return nil, fmt.Errorf("round repository required")
	}
	if loanRepo == nil {
		return nil, fmt.Errorf("loan repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:          gormDB,
		repo:        repo,
		contracts:   contracts,
		investments: investmentRepo,
		rounds:      roundRepo,
		loans:       loanRepo,
		ledger:      ledgerSvc,
		provider:    provider,
		metrics:     engineMetrics,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Request creates an exit request once the holding period has elapsed. A
// too-early request fails without creating any row; fee bps are fixed from
// the contract snapshot here and never recomputed at settlement.
func (s *service) Request(ctx context.Context, principal auth.Principal, input RequestExitInput) (*models.ExitRequest, error) {
	if input.ContractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id is required")
	}
	if !input.ExitType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid exit type %q", input.ExitType))
	}

	contract, _, err := s.loadOwnedContract(ctx, principal, input.ContractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != enums.ContractStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("contract is %s, only active contracts can exit", contract.Status))
	}

	open, err := s.repo.HasOpenRequest(ctx, contract.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "checking open exit requests")
	}
	if open {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "contract already has an open exit request")
	}

	eligibleAt := contract.StartDate.AddDate(0, 0, contract.MinHoldDays)
	now := s.now().UTC()
	if now.Before(eligibleAt) {
		return nil, pkgerrors.New(pkgerrors.CodeHoldingPeriod, "minimum holding period not satisfied").
			WithDetails(map[string]any{
				"min_hold_days": contract.MinHoldDays,
				"eligible_at":   eligibleAt,
			})
	}

	feeBps := contract.ExitFeeBpsQuarterly
	if input.ExitType == enums.ExitTypeOffcycle {
		feeBps = contract.ExitFeeBpsOffcycle
	}

	request := &models.ExitRequest{
		ID:         uuid.New(),
		ContractID: contract.ID,
		ExitType:   input.ExitType,
		Status:     enums.ExitStatusRequested,
		FeeBps:     feeBps,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating exit request")
	}
	s.logg.Info(ctx, "exit requested")
	return request, nil
}

// Settle quotes and pays out a requested exit. The quote is the contract's
// remaining cap minus the fee fixed at request time. A loan settlement swaps
// the cash payout for a companion financing offer plus a referral fee entry.
func (s *service) Settle(ctx context.Context, principal auth.Principal, exitID uuid.UUID, method enums.SettlementMethod) (*models.ExitRequest, error) {
	if exitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exit id is required")
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid settlement method %q", method))
	}
	if principal.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins settle exits")
	}

	request, err := s.repo.GetByID(ctx, exitID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading exit request")
	}
	if request == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "exit request not found")
	}
	if request.Status != enums.ExitStatusRequested {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("exit is %s, only requested exits can settle", request.Status))
	}

	contract, err := s.contracts.GetByID(ctx, request.ContractID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading contract")
	}
	if contract == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
	}
	investment, err := s.investments.GetByID(ctx, contract.InvestmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading investment")
	}
	if investment == nil {
		return nil, pkgerrors.New(pkgerrors.CodePersistence, "contract has no investment row")
	}
	round, err := s.rounds.GetByID(ctx, investment.RoundID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading round")
	}
	if round == nil {
		return nil, pkgerrors.New(pkgerrors.CodePersistence, "investment has no round row")
	}

	remaining := contract.RemainingCapCents()
	feeCents := remaining * int64(request.FeeBps) / 10_000
	quoted := remaining - feeCents
	if quoted < 0 {
		quoted = 0
	}

	var payoutRef string
	if method == enums.SettlementMethodCash && quoted > 0 {
		payoutRef, err = s.provider.Payout(ctx, investment.InvestorUserID, quoted)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "paying out exit")
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.contracts.WithTx(tx).GetByIDLocked(ctx, contract.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "locking contract")
		}
		if locked == nil {
			return pkgerrors.New(pkgerrors.CodePersistence, "contract row disappeared")
		}

		now := s.now().UTC()
		request.Status = enums.ExitStatusSettled
		request.QuotedAmountCents = &quoted
		request.FeeCents = &feeCents
		request.SettlementMethod = &method
		request.SettledAt = &now
		if err := s.repo.WithTx(tx).Save(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "settling exit request")
		}

		// the exit liquidates whatever cap headroom remained
		locked.PaidToDateCents = locked.PayoutCapCents
		locked.Status = enums.ContractStatusCompleted
		if err := s.contracts.WithTx(tx).Save(ctx, locked); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "closing out contract")
		}

		txLedger := s.ledger.WithTx(tx)
		if feeCents > 0 {
			if _, err := txLedger.Record(ctx, ledger.RecordEntryInput{
				Type:        enums.LedgerEntryTypeExitFee,
				AmountCents: feeCents,
				ActorUserID: &investment.InvestorUserID,
				StartupID:   &round.StartupID,
				ContractID:  &contract.ID,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "recording exit fee entry")
			}
		}

		switch method {
		case enums.SettlementMethodCash:
			if quoted > 0 {
				metadata, _ := json.Marshal(map[string]string{"payout_ref": payoutRef})
				if _, err := txLedger.Record(ctx, ledger.RecordEntryInput{
					Type:        enums.LedgerEntryTypeExitPayout,
					AmountCents: quoted,
					ActorUserID: &investment.InvestorUserID,
					StartupID:   &round.StartupID,
					ContractID:  &contract.ID,
					Metadata:    metadata,
				}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "recording exit payout entry")
				}
			}
		case enums.SettlementMethodLoan:
			if quoted > 0 {
				offer := &models.LoanOffer{
					ID:            uuid.New(),
					StartupID:     round.StartupID,
					ExitRequestID: request.ID,
					AmountCents:   quoted,
					FeeCents:      feeCents,
					Status:        enums.LoanOfferStatusOffered,
				}
				if err := s.loans.WithTx(tx).Create(ctx, offer); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating loan offer")
				}

				referralCents := quoted * referralFeeBps / 10_000
				if referralCents > 0 {
					metadata, _ := json.Marshal(map[string]string{"loan_offer_id": offer.ID.String()})
					if _, err := txLedger.Record(ctx, ledger.RecordEntryInput{
						Type:        enums.LedgerEntryTypeReferralFee,
						AmountCents: referralCents,
						StartupID:   &round.StartupID,
						ContractID:  &contract.ID,
						Metadata:    metadata,
					}); err != nil {
						return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "recording referral fee entry")
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncExitSettlement(string(method))
	// only cash settlements move money; a loan settlement is an offer, not a payout
	if method == enums.SettlementMethodCash {
		s.metrics.AddPayoutCents("exit_payout", quoted)
	}
	s.logg.Info(ctx, "exit settled")
	return request, nil
}

// Reject closes a requested exit without paying anything out. The contract
// stays active and the investor may request again later.
func (s *service) Reject(ctx context.Context, principal auth.Principal, exitID uuid.UUID) (*models.ExitRequest, error) {
	if exitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exit id is required")
	}
	if principal.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins reject exits")
	}

	request, err := s.repo.GetByID(ctx, exitID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading exit request")
	}
	if request == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "exit request not found")
	}
	if request.Status != enums.ExitStatusRequested {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("exit is %s, only requested exits can be rejected", request.Status))
	}

	request.Status = enums.ExitStatusRejected
	if err := s.repo.Save(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "rejecting exit request")
	}
	s.logg.Info(ctx, "exit rejected")
	return request, nil
}

func (s *service) Get(ctx context.Context, exitID uuid.UUID) (*models.ExitRequest, error) {
	if exitID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exit id is required")
	}
	request, err := s.repo.GetByID(ctx, exitID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading exit request")
	}
	if request == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "exit request not found")
	}
	return request, nil
}

func (s *service) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.ExitRequest, error) {
	if contractID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id is required")
	}
	requests, err := s.repo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing exit requests")
	}
	return requests, nil
}

func (s *service) loadOwnedContract(ctx context.Context, principal auth.Principal, contractID uuid.UUID) (*models.Contract, *models.Investment, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading contract")
	}
	if contract == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
	}
	investment, err := s.investments.GetByID(ctx, contract.InvestmentID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "loading investment")
	}
	if investment == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodePersistence, "contract has no investment row")
	}
	if principal.Role != enums.RoleAdmin && investment.InvestorUserID != principal.ID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the contract's investor can request an exit")
	}
	return contract, investment, nil
}
