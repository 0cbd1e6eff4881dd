package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// ExitRequest is an investor's request to liquidate a contract early or on a
// scheduled window. FeeBps is fixed from the contract snapshot when the
// request is created, never recomputed at settlement.
type ExitRequest struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID        uuid.UUID               `gorm:"column:contract_id;type:uuid;not null;index"`
	ExitType          enums.ExitType          `gorm:"column:exit_type;type:exit_type_enum;not null"`
	Status            enums.ExitStatus        `gorm:"column:status;type:exit_status_enum;not null;default:requested"`
	FeeBps            int                     `gorm:"column:fee_bps;not null"`
	QuotedAmountCents *int64                  `gorm:"column:quoted_amount_cents"`
	FeeCents          *int64                  `gorm:"column:fee_cents"`
	SettlementMethod  *enums.SettlementMethod `gorm:"column:settlement_method;type:settlement_method_enum"`
	RequestedAt       time.Time               `gorm:"column:requested_at;autoCreateTime"`
	SettledAt         *time.Time              `gorm:"column:settled_at"`
}
