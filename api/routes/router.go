package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmarchetti-dev/revshare-backend/api/controllers"
	"github.com/dmarchetti-dev/revshare-backend/api/middleware"
	"github.com/dmarchetti-dev/revshare-backend/internal/distributions"
	"github.com/dmarchetti-dev/revshare-backend/internal/exits"
	"github.com/dmarchetti-dev/revshare-backend/internal/investments"
	"github.com/dmarchetti-dev/revshare-backend/internal/ledger"
	"github.com/dmarchetti-dev/revshare-backend/internal/loans"
	"github.com/dmarchetti-dev/revshare-backend/internal/revenue"
	"github.com/dmarchetti-dev/revshare-backend/internal/rounds"
	"github.com/dmarchetti-dev/revshare-backend/internal/startups"
	"github.com/dmarchetti-dev/revshare-backend/pkg/config"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
	"github.com/dmarchetti-dev/revshare-backend/pkg/redis"
)

// Services bundles every engine the router exposes.
type Services struct {
	Startups      startups.Service
	Rounds        rounds.Service
	Investments   investments.Service
	Revenue       revenue.Service
	Distributions distributions.Service
	Exits         exits.Service
	Loans         loans.Service
	Ledger        ledger.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	gatherer prometheus.Gatherer,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/rounds", controllers.RoundListPublished(svcs.Rounds, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/ping", controllers.PrivatePing())

		r.Route("/startups", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, enums.RoleFounder, enums.RoleAdmin)).
				Post("/", controllers.StartupCreate(svcs.Startups, logg))
			r.Get("/mine", controllers.StartupListMine(svcs.Startups, logg))
			r.Get("/{startupId}", controllers.StartupGet(svcs.Startups, logg))
			r.Get("/{startupId}/rounds", controllers.StartupRounds(svcs.Rounds, logg))
			r.Get("/{startupId}/revenue", controllers.RevenueList(svcs.Revenue, logg))
			r.Get("/{startupId}/distributions", controllers.StartupDistributions(svcs.Distributions, logg))
			r.Get("/{startupId}/loan-offers", controllers.StartupLoanOffers(svcs.Loans, logg))
		})

		r.Route("/rounds", func(r chi.Router) {
			r.Post("/", controllers.RoundCreate(svcs.Rounds, logg))
			r.Get("/{roundId}", controllers.RoundGet(svcs.Rounds, logg))
			r.Get("/{roundId}/tiers", controllers.RoundTierOptions(svcs.Rounds, logg))
			r.Post("/{roundId}/tiers", controllers.RoundGenerateTiers(svcs.Rounds, logg))
			r.Post("/{roundId}/select-tier", controllers.RoundSelectTier(svcs.Rounds, logg))
			r.Post("/{roundId}/publish", controllers.RoundPublish(svcs.Rounds, logg))
			r.Post("/{roundId}/close", controllers.RoundClose(svcs.Rounds, logg))
		})

		r.Route("/investments", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, enums.RoleInvestor, enums.RoleAdmin)).
				Post("/", controllers.InvestmentCreate(svcs.Investments, logg))
			r.Get("/", controllers.PortfolioInvestments(svcs.Investments, logg))
		})

		r.Get("/portfolio/contracts", controllers.PortfolioContracts(svcs.Investments, logg))

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/{contractId}", controllers.ContractDetail(svcs.Investments, logg))
			r.Get("/{contractId}/ledger", controllers.ContractLedger(svcs.Ledger, logg))
			r.Get("/{contractId}/exits", controllers.ContractExits(svcs.Exits, logg))
		})

		r.Route("/revenue", func(r chi.Router) {
			r.Post("/", controllers.RevenueSubmit(svcs.Revenue, logg))
		})

		r.Route("/exits", func(r chi.Router) {
			r.With(middleware.RequireRole(logg, enums.RoleInvestor, enums.RoleAdmin)).
				Post("/", controllers.ExitRequestCreate(svcs.Exits, logg))
			r.Get("/{exitId}", controllers.ExitDetail(svcs.Exits, logg))
		})

		r.Route("/loan-offers", func(r chi.Router) {
			r.Get("/{offerId}", controllers.LoanOfferDetail(svcs.Loans, logg))
			r.Post("/{offerId}/accept", controllers.LoanOfferAccept(svcs.Loans, logg))
			r.Post("/{offerId}/decline", controllers.LoanOfferDecline(svcs.Loans, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.RoleAdmin))
		r.Get("/ping", controllers.AdminPing())
		r.Get("/startups", controllers.StartupList(svcs.Startups, logg))
		r.Route("/distributions", func(r chi.Router) {
			r.Post("/run", controllers.DistributionRun(svcs.Distributions, logg))
			r.Get("/{distributionId}", controllers.DistributionDetail(svcs.Distributions, logg))
		})
		r.Post("/exits/{exitId}/settle", controllers.AdminExitSettle(svcs.Exits, logg))
		r.Post("/exits/{exitId}/reject", controllers.AdminExitReject(svcs.Exits, logg))
		r.Get("/loan-offers", controllers.AdminLoanOffers(svcs.Loans, logg))
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/", controllers.AdminLedgerList(svcs.Ledger, logg))
			r.Get("/summary", controllers.AdminLedgerSummary(svcs.Ledger, logg))
		})
	})

	return r
}
