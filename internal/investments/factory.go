package investments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// daysPerMonth fixes the month-length convention for contract deadlines.
// Every duration in the system (cap windows, hold windows) uses 30-day
// months, so exit eligibility and cap expiry agree.
const daysPerMonth = 30

// originateContract builds the immutable terms snapshot for a settled
// investment. Fields are copied from the tier by value; later edits to the
// round's tier batch never reach a contract.
func originateContract(investment *models.Investment, tier *models.TierOption, now time.Time) *models.Contract {
	capCents := decimal.NewFromInt(investment.AmountCents).
		Mul(tier.PayoutCapMult).
		Round(0).
		IntPart()

	start := now.UTC()
	return &models.Contract{
		ID:                  uuid.New(),
		InvestmentID:        investment.ID,
		Status:              enums.ContractStatusActive,
		PrincipalCents:      investment.AmountCents,
		PayoutCapCents:      capCents,
		RevenueShareBps:     tier.RevenueShareBps,
		MinHoldDays:         tier.MinHoldDays,
		ExitFeeBpsQuarterly: tier.ExitFeeBpsQuarterly,
		ExitFeeBpsOffcycle:  tier.ExitFeeBpsOffcycle,
		StartDate:           start,
		EndDateCap:          start.AddDate(0, 0, tier.TimeCapMonths*daysPerMonth),
	}
}
