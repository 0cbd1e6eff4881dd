package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// Contract is the binding terms snapshot originated when an investment is
// accepted. RevenueShareBps, the payout cap and the hold window are copied by
// value from the round's selected tier; later tier edits never touch them.
// PaidToDateCents never exceeds PayoutCapCents; equality flips the status to
// completed.
type Contract struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvestmentID    uuid.UUID            `gorm:"column:investment_id;type:uuid;not null;uniqueIndex"`
	Status          enums.ContractStatus `gorm:"column:status;type:contract_status_enum;not null;default:active"`
	PrincipalCents  int64                `gorm:"column:principal_cents;not null"`
	PayoutCapCents  int64                `gorm:"column:payout_cap_cents;not null"`
	RevenueShareBps int                  `gorm:"column:revenue_share_bps;not null"`
	MinHoldDays     int                  `gorm:"column:min_hold_days;not null"`
	ExitFeeBpsQuarterly int              `gorm:"column:exit_fee_bps_quarterly;not null"`
	ExitFeeBpsOffcycle  int              `gorm:"column:exit_fee_bps_offcycle;not null"`
	PaidToDateCents int64                `gorm:"column:paid_to_date_cents;not null;default:0"`
	StartDate       time.Time            `gorm:"column:start_date;not null"`
	EndDateCap      time.Time            `gorm:"column:end_date_cap;not null"`
}

// RemainingCapCents is the headroom left before the payout cap binds.
func (c Contract) RemainingCapCents() int64 {
	remaining := c.PayoutCapCents - c.PaidToDateCents
	if remaining < 0 {
		return 0
	}
	return remaining
}
