package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// LedgerEntry records one immutable money movement. Rows are append-only;
// no update or delete path exists anywhere in the codebase.
type LedgerEntry struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type        enums.LedgerEntryType `gorm:"column:entry_type;type:ledger_entry_type_enum;not null;index"`
	AmountCents int64                 `gorm:"column:amount_cents;not null"`
	Currency    string                `gorm:"column:currency;size:3;not null;default:CAD"`
	ActorUserID *uuid.UUID            `gorm:"column:actor_user_id;type:uuid"`
	StartupID   *uuid.UUID            `gorm:"column:startup_id;type:uuid"`
	RoundID     *uuid.UUID            `gorm:"column:round_id;type:uuid"`
	ContractID  *uuid.UUID            `gorm:"column:contract_id;type:uuid;index"`
	Metadata    json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
