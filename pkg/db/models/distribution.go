package models

import (
	"time"

	"github.com/google/uuid"
)

// Distribution records one payout run for a (startup, month). The unique index
// on that pair is what makes duplicate triggers collapse into a single run.
type Distribution struct {
	ID                    uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StartupID             uuid.UUID `gorm:"column:startup_id;type:uuid;not null;index:idx_distributions_startup_month,unique,priority:1"`
	Month                 string    `gorm:"column:month;size:7;not null;index:idx_distributions_startup_month,unique,priority:2"`
	TotalDistributedCents int64     `gorm:"column:total_distributed_cents;not null;default:0"`
	CreatedBy             uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime"`
}
