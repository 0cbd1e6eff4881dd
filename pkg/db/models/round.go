package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// Round is one fundraising instance for a startup, bounded by a raise cap.
// The cap and selected tier are immutable once the round is published.
type Round struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StartupID     uuid.UUID         `gorm:"column:startup_id;type:uuid;not null"`
	Title         string            `gorm:"column:title;not null"`
	MaxRaiseCents int64             `gorm:"column:max_raise_cents;not null"`
	Status        enums.RoundStatus `gorm:"column:status;type:round_status_enum;not null;default:draft"`
	SelectedTier  *enums.TierLevel  `gorm:"column:selected_tier;type:tier_level_enum"`
	PublishedAt   *time.Time        `gorm:"column:published_at"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
