package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records money-movement activity across the investment,
// distribution, and exit engines.
type EngineMetrics struct {
	investmentsFinalized *prometheus.CounterVec
	capacityRejections   *prometheus.CounterVec
	distributionRuns     *prometheus.CounterVec
	payoutCents          *prometheus.CounterVec
	exitSettlements      *prometheus.CounterVec
	runDuration          *prometheus.HistogramVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	investmentsFinalized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "investments_finalized_total",
		Help: "Investments that completed payment and contract origination.",
	}, []string{"result"})
	capacityRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "round_capacity_rejections_total",
		Help: "Investment attempts rejected because the round cap was exceeded.",
	}, []string{"round"})
	distributionRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "distribution_runs_total",
		Help: "Distribution run outcomes by result.",
	}, []string{"result"})
	payoutCents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_cents_total",
		Help: "Cents paid out to investors by payout kind.",
	}, []string{"kind"})
	exitSettlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "exit_settlements_total",
		Help: "Settled exit requests by settlement method.",
	}, []string{"method"})
	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_run_duration_seconds",
		Help:    "Duration of engine runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"engine"})
	reg.MustRegister(
		investmentsFinalized,
		capacityRejections,
		distributionRuns,
		payoutCents,
		exitSettlements,
		runDuration,
	)
	return &EngineMetrics{
		investmentsFinalized: investmentsFinalized,
		capacityRejections:   capacityRejections,
		distributionRuns:     distributionRuns,
		payoutCents:          payoutCents,
		exitSettlements:      exitSettlements,
		runDuration:          runDuration,
	}
}

// IncInvestmentFinalized increments the investment counter for the result.
func (m *EngineMetrics) IncInvestmentFinalized(result string) {
	if m == nil || m.investmentsFinalized == nil {
		return
	}
	m.investmentsFinalized.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncCapacityRejection increments the cap-exceeded counter for the round.
func (m *EngineMetrics) IncCapacityRejection(roundID string) {
	if m == nil || m.capacityRejections == nil {
		return
	}
	m.capacityRejections.WithLabelValues(normalizeLabel(roundID)).Inc()
}

// IncDistributionRun increments the distribution-run counter for the result.
func (m *EngineMetrics) IncDistributionRun(result string) {
	if m == nil || m.distributionRuns == nil {
		return
	}
	m.distributionRuns.WithLabelValues(normalizeLabel(result)).Inc()
}

// AddPayoutCents adds paid-out cents for the payout kind.
func (m *EngineMetrics) AddPayoutCents(kind string, cents int64) {
	if m == nil || m.payoutCents == nil || cents <= 0 {
		return
	}
	m.payoutCents.WithLabelValues(normalizeLabel(kind)).Add(float64(cents))
}

// IncExitSettlement increments the exit-settlement counter for the method.
func (m *EngineMetrics) IncExitSettlement(method string) {
	if m == nil || m.exitSettlements == nil {
		return
	}
	m.exitSettlements.WithLabelValues(normalizeLabel(method)).Inc()
}

// ObserveRunDuration records the duration for the named engine run.
func (m *EngineMetrics) ObserveRunDuration(engine string, duration time.Duration) {
	if m == nil || m.runDuration == nil {
		return
	}
	m.runDuration.WithLabelValues(normalizeLabel(engine)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
