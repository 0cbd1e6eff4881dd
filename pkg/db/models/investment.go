package models

import (
	"time"

	"github.com/google/uuid"
)

// Investment is an accepted subscription against a published round. Rows are
// created inside the capacity-check transaction; PaymentID is filled in once
// the provider charge settles.
type Investment struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RoundID        uuid.UUID `gorm:"column:round_id;type:uuid;not null;index"`
	InvestorUserID uuid.UUID `gorm:"column:investor_user_id;type:uuid;not null;index"`
	AmountCents    int64     `gorm:"column:amount_cents;not null"`
	PaymentID      string    `gorm:"column:payment_id"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
