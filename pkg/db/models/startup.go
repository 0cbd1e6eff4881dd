package models

import (
	"time"

	"github.com/google/uuid"
)

// Startup anchors rounds and revenue reports to a founder-owned company.
type Startup struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FounderUserID uuid.UUID `gorm:"column:founder_user_id;type:uuid;not null"`
	Name          string    `gorm:"column:name;not null"`
	Country       string    `gorm:"column:country;size:2;not null;default:CA"`
	Website       *string   `gorm:"column:website"`
	Description   *string   `gorm:"column:description"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
