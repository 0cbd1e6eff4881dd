package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/internal/distributions"
	"github.com/dmarchetti-dev/revshare-backend/internal/exits"
	"github.com/dmarchetti-dev/revshare-backend/internal/investments"
	"github.com/dmarchetti-dev/revshare-backend/internal/ledger"
	"github.com/dmarchetti-dev/revshare-backend/internal/revenue"
	"github.com/dmarchetti-dev/revshare-backend/internal/rounds"
	"github.com/dmarchetti-dev/revshare-backend/internal/startups"
	pkgAuth "github.com/dmarchetti-dev/revshare-backend/pkg/auth"
	"github.com/dmarchetti-dev/revshare-backend/pkg/config"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubStartupService struct{}

func (stubStartupService) Create(ctx context.Context, input startups.CreateStartupInput) (*models.Startup, error) {
	return &models.Startup{}, nil
}

func (stubStartupService) Get(ctx context.Context, id uuid.UUID) (*models.Startup, error) {
	return &models.Startup{}, nil
}

func (stubStartupService) ListByFounder(ctx context.Context, founderUserID uuid.UUID) ([]models.Startup, error) {
	return nil, nil
}

func (stubStartupService) List(ctx context.Context, limit, offset int) ([]models.Startup, error) {
	return nil, nil
}

type stubRoundService struct{}

func (stubRoundService) CreateDraft(ctx context.Context, principal pkgAuth.Principal, input rounds.CreateRoundInput) (*models.Round, error) {
	return &models.Round{}, nil
}

func (stubRoundService) GenerateTiers(ctx context.Context, principal pkgAuth.Principal, roundID uuid.UUID, input rounds.GenerateTiersInput) ([]models.TierOption, error) {
	return nil, nil
}

func (stubRoundService) SelectTier(ctx context.Context, principal pkgAuth.Principal, roundID uuid.UUID, tier enums.TierLevel) (*models.Round, error) {
	return &models.Round{}, nil
}

func (stubRoundService) Publish(ctx context.Context, principal pkgAuth.Principal, roundID uuid.UUID) (*models.Round, error) {
	return &models.Round{}, nil
}

func (stubRoundService) Close(ctx context.Context, principal pkgAuth.Principal, roundID uuid.UUID) (*models.Round, error) {
	return &models.Round{}, nil
}

func (stubRoundService) Get(ctx context.Context, roundID uuid.UUID) (*models.Round, error) {
	return &models.Round{}, nil
}

func (stubRoundService) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Round, error) {
	return nil, nil
}

func (stubRoundService) ListPublished(ctx context.Context, limit, offset int) ([]models.Round, error) {
	return []models.Round{}, nil
}

func (stubRoundService) ListTierOptions(ctx context.Context, roundID uuid.UUID) ([]models.TierOption, error) {
	return nil, nil
}

type stubInvestmentService struct{}

func (stubInvestmentService) Reserve(ctx context.Context, principal pkgAuth.Principal, input investments.ReserveInput) (*models.Contract, error) {
	return &models.Contract{}, nil
}

func (stubInvestmentService) GetContract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	return &models.Contract{}, nil
}

func (stubInvestmentService) ListContractsByInvestor(ctx context.Context, investorUserID uuid.UUID) ([]models.Contract, error) {
	return nil, nil
}

func (stubInvestmentService) ListByInvestor(ctx context.Context, investorUserID uuid.UUID) ([]models.Investment, error) {
	return nil, nil
}

type stubRevenueService struct{}

func (stubRevenueService) Submit(ctx context.Context, principal pkgAuth.Principal, input revenue.SubmitReportInput) (*models.RevenueReport, error) {
	return &models.RevenueReport{}, nil
}

func (stubRevenueService) GetByStartupMonth(ctx context.Context, startupID uuid.UUID, month string) (*models.RevenueReport, error) {
	return &models.RevenueReport{}, nil
}

func (stubRevenueService) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.RevenueReport, error) {
	return nil, nil
}

type stubDistributionService struct{}

func (stubDistributionService) Run(ctx context.Context, principal pkgAuth.Principal, startupID uuid.UUID, month string) (*distributions.RunSummary, error) {
	return &distributions.RunSummary{}, nil
}

func (stubDistributionService) Get(ctx context.Context, distributionID uuid.UUID) (*distributions.RunSummary, error) {
	return &distributions.RunSummary{}, nil
}

func (stubDistributionService) ListByStartup(ctx context.Context, startupID uuid.UUID) ([]models.Distribution, error) {
	return nil, nil
}

type stubExitService struct{}

func (stubExitService) Request(ctx context.Context, principal pkgAuth.Principal, input exits.RequestExitInput) (*models.ExitRequest, error) {
	return &models.ExitRequest{}, nil
}

func (stubExitService) Settle(ctx context.Context, principal pkgAuth.Principal, exitID uuid.UUID, method enums.SettlementMethod) (*models.ExitRequest, error) {
	return &models.ExitRequest{}, nil
}

func (stubExitService) Reject(ctx context.Context, principal pkgAuth.Principal, exitID uuid.UUID) (*models.ExitRequest, error) {
	return &models.ExitRequest{}, nil
}

func (stubExitService) Get(ctx context.Context, exitID uuid.UUID) (*models.ExitRequest, error) {
	return &models.ExitRequest{}, nil
}

func (stubExitService) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.ExitRequest, error) {
	return nil, nil
}

type stubLoanService struct{}

func (stubLoanService) Get(ctx context.Context, principal pkgAuth.Principal, offerID uuid.UUID) (*models.LoanOffer, error) {
	return &models.LoanOffer{}, nil
}

func (stubLoanService) ListByStartup(ctx context.Context, principal pkgAuth.Principal, startupID uuid.UUID) ([]models.LoanOffer, error) {
	return nil, nil
}

func (stubLoanService) List(ctx context.Context, principal pkgAuth.Principal, limit, offset int) ([]models.LoanOffer, error) {
	return nil, nil
}

func (stubLoanService) Accept(ctx context.Context, principal pkgAuth.Principal, offerID uuid.UUID) (*models.LoanOffer, error) {
	return &models.LoanOffer{}, nil
}

func (stubLoanService) Decline(ctx context.Context, principal pkgAuth.Principal, offerID uuid.UUID) (*models.LoanOffer, error) {
	return &models.LoanOffer{}, nil
}

type stubLedgerService struct{}

func (s stubLedgerService) WithTx(tx *gorm.DB) ledger.Service {
	return s
}

func (stubLedgerService) Record(ctx context.Context, input ledger.RecordEntryInput) (*models.LedgerEntry, error) {
	return &models.LedgerEntry{}, nil
}

func (stubLedgerService) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (stubLedgerService) ListByType(ctx context.Context, entryType enums.LedgerEntryType, limit, offset int) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (stubLedgerService) SumByType(ctx context.Context, entryType enums.LedgerEntryType) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{}, // db.Pinger
		stubPinger{}, // redis.Pinger
		nil,          // prometheus.Gatherer
		Services{
			Startups:      stubStartupService{},
			Rounds:        stubRoundService{},
			Investments:   stubInvestmentService{},
			Revenue:       stubRevenueService{},
			Distributions: stubDistributionService{},
			Exits:         stubExitService{},
			Loans:         stubLoanService{},
			Ledger:        stubLedgerService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicGroupNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public ping got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleInvestor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	nonAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/ping", nil)
	nonAdmin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleFounder))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, nonAdmin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/ping", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestStartupCreateRequiresFounderRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	investor := httptest.NewRequest(http.MethodPost, "/api/v1/startups", nil)
	investor.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleInvestor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, investor)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for investor creating startup got %d", resp.Code)
	}
}

func TestInvestmentCreateRequiresInvestorRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	founder := httptest.NewRequest(http.MethodPost, "/api/v1/investments", nil)
	founder.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleFounder))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, founder)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for founder investing got %d", resp.Code)
	}
}

func TestExitSettleLivesUnderAdminGroup(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	investor := httptest.NewRequest(http.MethodPost, "/api/admin/v1/exits/"+uuid.NewString()+"/settle", nil)
	investor.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleInvestor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, investor)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for investor settling exits got %d", resp.Code)
	}
}

func TestPublishedRoundsVisibleWithoutToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/rounds", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for published rounds got %d", resp.Code)
	}
}
