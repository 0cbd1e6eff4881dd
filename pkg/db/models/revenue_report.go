package models

import (
	"time"

	"github.com/google/uuid"
)

// RevenueReport is the founder-reported gross revenue for one (startup, month).
// Distribution runs use it as the payout base.
type RevenueReport struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StartupID         uuid.UUID `gorm:"column:startup_id;type:uuid;not null;index:idx_revenue_reports_startup_month,unique,priority:1"`
	Month             string    `gorm:"column:month;size:7;not null;index:idx_revenue_reports_startup_month,unique,priority:2"`
	GrossRevenueCents int64     `gorm:"column:gross_revenue_cents;not null"`
	ReportedBy        uuid.UUID `gorm:"column:reported_by;type:uuid;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}
