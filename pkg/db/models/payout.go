package models

import (
	"time"

	"github.com/google/uuid"
)

// Payout is one contract's share of one distribution. At most one row may
// exist per (contract, distribution); reruns key off that to stay idempotent.
type Payout struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID     uuid.UUID `gorm:"column:contract_id;type:uuid;not null;index:idx_payouts_contract_distribution,unique,priority:1"`
	DistributionID uuid.UUID `gorm:"column:distribution_id;type:uuid;not null;index:idx_payouts_contract_distribution,unique,priority:2"`
	AmountCents    int64     `gorm:"column:amount_cents;not null"`
	PayoutRef      string    `gorm:"column:payout_ref;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
