package investments

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

func TestOriginateContractRoundsCap(t *testing.T) {
	investment := &models.Investment{ID: uuid.New(), AmountCents: 333}
	tier := &models.TierOption{
		Tier:            enums.TierLevelLow,
		RevenueShareBps: 400,
		TimeCapMonths:   24,
		PayoutCapMult:   decimal.RequireFromString("1.2"),
		MinHoldDays:     120,
	}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	contract := originateContract(investment, tier, now)

	// 333 x 1.2 = 399.6, rounded to 400
	assert.Equal(t, int64(400), contract.PayoutCapCents)
	assert.Equal(t, now, contract.StartDate)
	assert.Equal(t, now.AddDate(0, 0, 720), contract.EndDateCap)
	assert.Equal(t, enums.ContractStatusActive, contract.Status)
	assert.Equal(t, investment.ID, contract.InvestmentID)
}
