package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// LoanOffer is the companion financing offer created when an exit settles via
// the loan method.
type LoanOffer struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StartupID     uuid.UUID             `gorm:"column:startup_id;type:uuid;not null;index"`
	ExitRequestID uuid.UUID             `gorm:"column:exit_request_id;type:uuid;not null;uniqueIndex"`
	AmountCents   int64                 `gorm:"column:amount_cents;not null"`
	FeeCents      int64                 `gorm:"column:fee_cents;not null"`
	Status        enums.LoanOfferStatus `gorm:"column:status;type:loan_offer_status_enum;not null;default:offered"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}
