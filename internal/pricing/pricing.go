package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// MinRaiseBaselineCents floors degenerate raise amounts before they feed the
// explanation payload.
const MinRaiseBaselineCents = 50_000

// Input carries the round parameters the pricer quotes against.
type Input struct {
	MaxRaiseCents               int64           `json:"max_raise_cents"`
	RiskLevel                   enums.RiskLevel `json:"risk_level"`
	Stage                       enums.Stage     `json:"stage"`
	BaselineMonthlyRevenueCents *int64          `json:"baseline_monthly_revenue_cents,omitempty"`
}

// Quote is one priced tier offer. Quotes are plain values; callers persist
// them as tier options when a round adopts the batch.
type Quote struct {
	Tier                enums.TierLevel `json:"tier"`
	RevenueShareBps     int             `json:"revenue_share_bps"`
	TimeCapMonths       int             `json:"time_cap_months"`
	PayoutCapMult       decimal.Decimal `json:"payout_cap_mult"`
	MinHoldDays         int             `json:"min_hold_days"`
	ExitFeeBpsQuarterly int             `json:"exit_fee_bps_quarterly"`
	ExitFeeBpsOffcycle  int             `json:"exit_fee_bps_offcycle"`
	Explanation         json.RawMessage `json:"explanation"`
}

// Explanation is the structured audit payload attached to each quote.
type Explanation struct {
	Rationale                   string          `json:"rationale"`
	MaxRaiseCents               int64           `json:"max_raise_cents"`
	FlooredRaiseCents           int64           `json:"floored_raise_cents"`
	RiskLevel                   enums.RiskLevel `json:"risk_level"`
	Stage                       enums.Stage     `json:"stage"`
	BaselineMonthlyRevenueCents *int64          `json:"baseline_monthly_revenue_cents,omitempty"`
}

type tierBase struct {
	tier          enums.TierLevel
	shareBps      int
	months        int
	capMult       decimal.Decimal
	minHoldDays   int
	feeBpsQuarter int
	feeBpsOffcyc  int
	rationale     string
}

var (
	riskShareFactors = map[enums.RiskLevel]decimal.Decimal{
		enums.RiskLevelLow:    decimal.RequireFromString("0.85"),
		enums.RiskLevelMedium: decimal.RequireFromString("1.0"),
		enums.RiskLevelHigh:   decimal.RequireFromString("1.25"),
	}

	// Growth rounds carry a lower payout ceiling than seed rounds; the
	// startup is expected to repay faster out of existing revenue.
	stageCapAdjustment = map[enums.Stage]decimal.Decimal{
		enums.StageSeed:   decimal.Zero,
		enums.StageGrowth: decimal.RequireFromString("-0.1"),
	}

	tierBases = []tierBase{
		{
			tier:          enums.TierLevelLow,
			shareBps:      400,
			months:        24,
			capMult:       decimal.RequireFromString("1.2"),
			minHoldDays:   120,
			feeBpsQuarter: 100,
			feeBpsOffcyc:  300,
			rationale:     "Lower cap, shorter duration for conservative founders.",
		},
		{
			tier:          enums.TierLevelMedium,
			shareBps:      600,
			months:        30,
			capMult:       decimal.RequireFromString("1.5"),
			minHoldDays:   180,
			feeBpsQuarter: 150,
			feeBpsOffcyc:  400,
			rationale:     "Balanced cap with moderate revenue share.",
		},
		{
			tier:          enums.TierLevelHigh,
			shareBps:      800,
			months:        36,
			capMult:       decimal.RequireFromString("1.8"),
			minHoldDays:   270,
			feeBpsQuarter: 200,
			feeBpsOffcyc:  500,
			rationale:     "Higher cap to align with higher return expectations.",
		},
	}
)

// PriceTiers computes the three-tier offer batch for a round. Deterministic
// and side-effect free; the same input always yields the same quotes.
func PriceTiers(input Input) ([]Quote, error) {
	if input.MaxRaiseCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max raise must be positive")
	}
	riskFactor, ok := riskShareFactors[input.RiskLevel]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid risk level %q", input.RiskLevel))
	}
	capAdjust, ok := stageCapAdjustment[input.Stage]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stage %q", input.Stage))
	}
	if input.BaselineMonthlyRevenueCents != nil && *input.BaselineMonthlyRevenueCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "baseline monthly revenue cannot be negative")
	}

	floored := input.MaxRaiseCents
	if floored < MinRaiseBaselineCents {
		floored = MinRaiseBaselineCents
	}

	quotes := make([]Quote, 0, len(tierBases))
	for _, base := range tierBases {
		shareBps := int(decimal.NewFromInt(int64(base.shareBps)).Mul(riskFactor).Round(0).IntPart())
		capMult := base.capMult.Add(capAdjust)

		explanation, err := json.Marshal(Explanation{
			Rationale:                   base.rationale,
			MaxRaiseCents:               input.MaxRaiseCents,
			FlooredRaiseCents:           floored,
			RiskLevel:                   input.RiskLevel,
			Stage:                       input.Stage,
			BaselineMonthlyRevenueCents: input.BaselineMonthlyRevenueCents,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshaling tier explanation")
		}

		quotes = append(quotes, Quote{
			Tier:                base.tier,
			RevenueShareBps:     shareBps,
			TimeCapMonths:       base.months,
			PayoutCapMult:       capMult,
			MinHoldDays:         base.minHoldDays,
			ExitFeeBpsQuarterly: base.feeBpsQuarter,
			ExitFeeBpsOffcycle:  base.feeBpsOffcyc,
			Explanation:         explanation,
		})
	}
	return quotes, nil
}
