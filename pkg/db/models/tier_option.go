package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// TierOption is one priced offer in a round's generated batch. Regenerating a
// round's tiers replaces the whole batch; contracts never reference these rows
// directly, they snapshot the fields they need.
type TierOption struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RoundID             uuid.UUID       `gorm:"column:round_id;type:uuid;not null;index:idx_tier_options_round_tier,unique,priority:1"`
	Tier                enums.TierLevel `gorm:"column:tier;type:tier_level_enum;not null;index:idx_tier_options_round_tier,unique,priority:2"`
	RevenueShareBps     int             `gorm:"column:revenue_share_bps;not null"`
	TimeCapMonths       int             `gorm:"column:time_cap_months;not null"`
	PayoutCapMult       decimal.Decimal `gorm:"column:payout_cap_mult;type:numeric(10,2);not null"`
	MinHoldDays         int             `gorm:"column:min_hold_days;not null"`
	ExitFeeBpsQuarterly int             `gorm:"column:exit_fee_bps_quarterly;not null"`
	ExitFeeBpsOffcycle  int             `gorm:"column:exit_fee_bps_offcycle;not null"`
	Explanation         json.RawMessage `gorm:"column:explanation;type:jsonb;not null"`
}
