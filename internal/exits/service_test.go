package exits

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/internal/investments"
	"github.com/dmarchetti-dev/revshare-backend/internal/ledger"
	"github.com/dmarchetti-dev/revshare-backend/internal/loans"
	"github.com/dmarchetti-dev/revshare-backend/internal/rounds"
	"github.com/dmarchetti-dev/revshare-backend/pkg/auth"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
	"github.com/dmarchetti-dev/revshare-backend/pkg/metrics"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:exits_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS startups (
  id TEXT PRIMARY KEY,
  founder_user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  country TEXT NOT NULL DEFAULT 'CA',
  website TEXT,
  description TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`,
		`CREATE TABLE IF NOT EXISTS rounds (
  id TEXT PRIMARY KEY,
  startup_id TEXT NOT NULL,
  title TEXT NOT NULL,
  max_raise_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  selected_tier TEXT,
  published_at DATETIME,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`,
		`CREATE TABLE IF NOT EXISTS investments (
  id TEXT PRIMARY KEY,
  round_id TEXT NOT NULL,
  investor_user_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  payment_id TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`,
		`CREATE TABLE IF NOT EXISTS contracts (
  id TEXT PRIMARY KEY,
  investment_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'active',
  principal_cents INTEGER NOT NULL,
  payout_cap_cents INTEGER NOT NULL,
  revenue_share_bps INTEGER NOT NULL,
  min_hold_days INTEGER NOT NULL,
  exit_fee_bps_quarterly INTEGER NOT NULL,
  exit_fee_bps_offcycle INTEGER NOT NULL,
  paid_to_date_cents INTEGER NOT NULL DEFAULT 0,
  start_date DATETIME NOT NULL,
  end_date_cap DATETIME NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS exit_requests (
  id TEXT PRIMARY KEY,
  contract_id TEXT NOT NULL,
  exit_type TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'requested',
  fee_bps INTEGER NOT NULL,
  quoted_amount_cents INTEGER,
  fee_cents INTEGER,
  settlement_method TEXT,
  requested_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  settled_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS loan_offers (
  id TEXT PRIMARY KEY,
  startup_id TEXT NOT NULL,
  exit_request_id TEXT NOT NULL UNIQUE,
  amount_cents INTEGER NOT NULL,
  fee_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'offered',
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`,
		`CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  entry_type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'CAD',
  actor_user_id TEXT,
  startup_id TEXT,
  round_id TEXT,
  contract_id TEXT,
  metadata TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type fakeProvider struct {
	payouts     int
	lastPayeeID uuid.UUID
	lastAmount  int64
}

func (f *fakeProvider) Charge(ctx context.Context, payerID uuid.UUID, amountCents int64) (string, error) {
	return "sim_invest_" + uuid.NewString()[:8], nil
}

func (f *fakeProvider) Payout(ctx context.Context, payeeID uuid.UUID, amountCents int64) (string, error) {
	f.payouts++
	f.lastPayeeID = payeeID
	f.lastAmount = amountCents
	return "sim_payout_" + uuid.NewString()[:8], nil
}

type fixture struct {
	db           *gorm.DB
	svc          Service
	impl         *service
	provider     *fakeProvider
	contractRepo investments.ContractRepository
	loanRepo     loans.Repository
	ledgerSvc    ledger.Service
	admin        auth.Principal
	startupID    uuid.UUID
	roundID      uuid.UUID
	now          time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	repo := NewRepository(db)
	contractRepo := investments.NewContractRepository(db)
	investmentRepo := investments.NewRepository(db)
	roundRepo := rounds.NewRepository(db)
	loanRepo := loans.NewRepository(db)
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(db))
	require.NoError(t, err)

	startup := &models.Startup{ID: uuid.New(), FounderUserID: uuid.New(), Name: "Maple Metrics", Country: "CA"}
	require.NoError(t, db.Create(startup).Error)
	round := &models.Round{
		ID: uuid.New(), StartupID: startup.ID, Title: "Series RS-1",
		MaxRaiseCents: 10_000_000, Status: enums.RoundStatusPublished,
	}
	require.NoError(t, db.Create(round).Error)

	provider := &fakeProvider{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})

	svc, err := NewService(db, repo, contractRepo, investmentRepo, roundRepo, loanRepo,
		ledgerSvc, provider, nil, logg)
	require.NoError(t, err)

	impl := svc.(*service)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return now }

	return &fixture{
		db:           db,
		svc:          svc,
		impl:         impl,
		provider:     provider,
		contractRepo: contractRepo,
		loanRepo:     loanRepo,
		ledgerSvc:    ledgerSvc,
		admin:        auth.Principal{ID: uuid.New(), Role: enums.RoleAdmin},
		startupID:    startup.ID,
		roundID:      round.ID,
		now:          now,
	}
}

func (f *fixture) seedContract(t *testing.T, startedDaysAgo int, paidCents int64) (*models.Contract, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	investorID := uuid.New()
	investment := &models.Investment{
		ID: uuid.New(), RoundID: f.roundID, InvestorUserID: investorID,
		AmountCents: 500_000, PaymentID: "sim_invest_seed",
	}
	require.NoError(t, f.db.Create(investment).Error)

	contract := &models.Contract{
		ID:                  uuid.New(),
		InvestmentID:        investment.ID,
		Status:              enums.ContractStatusActive,
		PrincipalCents:      500_000,
		PayoutCapCents:      750_000,
		RevenueShareBps:     600,
		MinHoldDays:         90,
		ExitFeeBpsQuarterly: 150,
		ExitFeeBpsOffcycle:  400,
		PaidToDateCents:     paidCents,
		StartDate:           f.now.AddDate(0, 0, -startedDaysAgo),
		EndDateCap:          f.now.AddDate(0, 0, 800),
	}
	require.NoError(t, f.contractRepo.Create(ctx, contract))
	return contract, investorID
}

func TestRequestBeforeHoldingPeriod(t *testing.T) {
	f := newFixture(t)
	contract, investorID := f.seedContract(t, 50, 0)

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	_, err := f.svc.Request(context.Background(), investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeHoldingPeriod, pkgerrors.CodeOf(err))

	var count int64
	require.NoError(t, f.db.Model(&models.ExitRequest{}).Count(&count).Error)
	assert.Zero(t, count, "a rejected request must leave no row behind")
}

func TestRequestAfterHoldingPeriod(t *testing.T) {
	f := newFixture(t)
	contract, investorID := f.seedContract(t, 91, 0)

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	request, err := f.svc.Request(context.Background(), investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ExitStatusRequested, request.Status)
	assert.Equal(t, 150, request.FeeBps, "quarterly exits snapshot the quarterly fee")
}

func TestRequestOffcycleFeeSnapshot(t *testing.T) {
	f := newFixture(t)
	contract, investorID := f.seedContract(t, 200, 0)

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	request, err := f.svc.Request(context.Background(), investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeOffcycle,
	})
	require.NoError(t, err)
	assert.Equal(t, 400, request.FeeBps)
}

func TestRequestDuplicateOpenConflict(t *testing.T) {
	f := newFixture(t)
	contract, investorID := f.seedContract(t, 120, 0)
	ctx := context.Background()

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	input := RequestExitInput{ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly}
	_, err := f.svc.Request(ctx, investor, input)
	require.NoError(t, err)

	_, err = f.svc.Request(ctx, investor, input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestRequestForbiddenForStrangers(t *testing.T) {
	f := newFixture(t)
	contract, _ := f.seedContract(t, 120, 0)

	stranger := auth.Principal{ID: uuid.New(), Role: enums.RoleInvestor}
	_, err := f.svc.Request(context.Background(), stranger, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestRequestInactiveContract(t *testing.T) {
	f := newFixture(t)
	contract, investorID := f.seedContract(t, 120, 750_000)
	contract.Status = enums.ContractStatusCompleted
	require.NoError(t, f.db.Save(contract).Error)

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	_, err := f.svc.Request(context.Background(), investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
}

func TestSettleCash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract, investorID := f.seedContract(t, 120, 250_000)

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	request, err := f.svc.Request(ctx, investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly,
	})
	require.NoError(t, err)

	settled, err := f.svc.Settle(ctx, f.admin, request.ID, enums.SettlementMethodCash)
	require.NoError(t, err)

	// remaining 500,000; fee 150 bps = 7,500; quote 492,500
	require.NotNil(t, settled.QuotedAmountCents)
	require.NotNil(t, settled.FeeCents)
	assert.Equal(t, int64(492_500), *settled.QuotedAmountCents)
	assert.Equal(t, int64(7_500), *settled.FeeCents)
	assert.Equal(t, enums.ExitStatusSettled, settled.Status)
	require.NotNil(t, settled.SettlementMethod)
	assert.Equal(t, enums.SettlementMethodCash, *settled.SettlementMethod)
	assert.NotNil(t, settled.SettledAt)

	assert.Equal(t, 1, f.provider.payouts)
	assert.Equal(t, investorID, f.provider.lastPayeeID)
	assert.Equal(t, int64(492_500), f.provider.lastAmount)

	reloaded, err := f.contractRepo.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ContractStatusCompleted, reloaded.Status)
	assert.Equal(t, reloaded.PayoutCapCents, reloaded.PaidToDateCents)

	feeTotal, err := f.ledgerSvc.SumByType(ctx, enums.LedgerEntryTypeExitFee)
	require.NoError(t, err)
	assert.Equal(t, int64(7_500), feeTotal)
	payoutTotal, err := f.ledgerSvc.SumByType(ctx, enums.LedgerEntryTypeExitPayout)
	require.NoError(t, err)
	assert.Equal(t, int64(492_500), payoutTotal)
}

func TestSettleLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract, investorID := f.seedContract(t, 120, 250_000)

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	request, err := f.svc.Request(ctx, investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeOffcycle,
	})
	require.NoError(t, err)

	settled, err := f.svc.Settle(ctx, f.admin, request.ID, enums.SettlementMethodLoan)
	require.NoError(t, err)

	// remaining 500,000; fee 400 bps = 20,000; quote 480,000
	require.NotNil(t, settled.QuotedAmountCents)
	assert.Equal(t, int64(480_000), *settled.QuotedAmountCents)
	assert.Equal(t, 0, f.provider.payouts, "loan settlements move no cash")

	offer, err := f.loanRepo.GetByExitRequestID(ctx, request.ID)
	require.NoError(t, err)
	require.NotNil(t, offer)
	assert.Equal(t, f.startupID, offer.StartupID)
	assert.Equal(t, int64(480_000), offer.AmountCents)
	assert.Equal(t, int64(20_000), offer.FeeCents)
	assert.Equal(t, enums.LoanOfferStatusOffered, offer.Status)

	// 100 bps referral on the quoted amount
	referralTotal, err := f.ledgerSvc.SumByType(ctx, enums.LedgerEntryTypeReferralFee)
	require.NoError(t, err)
	assert.Equal(t, int64(4_800), referralTotal)
}

func TestSettleTwiceStateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract, investorID := f.seedContract(t, 120, 0)

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	request, err := f.svc.Request(ctx, investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly,
	})
	require.NoError(t, err)

	_, err = f.svc.Settle(ctx, f.admin, request.ID, enums.SettlementMethodCash)
	require.NoError(t, err)
	_, err = f.svc.Settle(ctx, f.admin, request.ID, enums.SettlementMethodCash)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
	assert.Equal(t, 1, f.provider.payouts)
}

func TestSettleRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract, investorID := f.seedContract(t, 120, 0)

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	request, err := f.svc.Request(ctx, investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly,
	})
	require.NoError(t, err)

	_, err = f.svc.Settle(ctx, investor, request.ID, enums.SettlementMethodCash)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestSettleUnknownExit(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Settle(context.Background(), f.admin, uuid.New(), enums.SettlementMethodCash)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestSettleCountsPayoutCentsOnlyForCash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	f.impl.metrics = metrics.NewEngineMetrics(reg)

	cashContract, cashInvestor := f.seedContract(t, 120, 250_000)
	request, err := f.svc.Request(ctx, auth.Principal{ID: cashInvestor, Role: enums.RoleInvestor},
		RequestExitInput{ContractID: cashContract.ID, ExitType: enums.ExitTypeQuarterly})
	require.NoError(t, err)
	_, err = f.svc.Settle(ctx, f.admin, request.ID, enums.SettlementMethodCash)
	require.NoError(t, err)

	loanContract, loanInvestor := f.seedContract(t, 120, 250_000)
	request, err = f.svc.Request(ctx, auth.Principal{ID: loanInvestor, Role: enums.RoleInvestor},
		RequestExitInput{ContractID: loanContract.ID, ExitType: enums.ExitTypeQuarterly})
	require.NoError(t, err)
	_, err = f.svc.Settle(ctx, f.admin, request.ID, enums.SettlementMethodLoan)
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	assert.Equal(t, float64(1), gatheredCounter(t, mfs, "exit_settlements_total", "method", "cash"))
	assert.Equal(t, float64(1), gatheredCounter(t, mfs, "exit_settlements_total", "method", "loan"))

	// both quotes are 492,500 but only the cash one moved money
	assert.Equal(t, float64(492_500), gatheredCounter(t, mfs, "payout_cents_total", "kind", "exit_payout"))
}

func gatheredCounter(t *testing.T, mfs []*dto.MetricFamily, name, label, value string) float64 {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	t.Fatalf("counter %s{%s=%q} not found", name, label, value)
	return 0
}

func TestRejectLeavesContractActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract, investorID := f.seedContract(t, 120, 0)

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	request, err := f.svc.Request(ctx, investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly,
	})
	require.NoError(t, err)

	rejected, err := f.svc.Reject(ctx, f.admin, request.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ExitStatusRejected, rejected.Status)
	assert.Nil(t, rejected.QuotedAmountCents)
	assert.Nil(t, rejected.SettledAt)
	assert.Equal(t, 0, f.provider.payouts)

	reloaded, err := f.contractRepo.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ContractStatusActive, reloaded.Status)

	// the contract is free for a fresh request afterwards
	_, err = f.svc.Request(ctx, investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly,
	})
	require.NoError(t, err)
}

func TestRejectThenSettleStateConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract, investorID := f.seedContract(t, 120, 0)

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	request, err := f.svc.Request(ctx, investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly,
	})
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, f.admin, request.ID)
	require.NoError(t, err)
	_, err = f.svc.Settle(ctx, f.admin, request.ID, enums.SettlementMethodCash)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
}

func TestRejectRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contract, investorID := f.seedContract(t, 120, 0)

	investor := auth.Principal{ID: investorID, Role: enums.RoleInvestor}
	request, err := f.svc.Request(ctx, investor, RequestExitInput{
		ContractID: contract.ID, ExitType: enums.ExitTypeQuarterly,
	})
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, investor, request.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}
