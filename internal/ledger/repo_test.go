package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  entry_type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'CAD',
  actor_user_id TEXT,
  startup_id TEXT,
  round_id TEXT,
  contract_id TEXT,
  metadata TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedEntry(t *testing.T, repo Repository, entryType enums.LedgerEntryType, amount int64, contractID *uuid.UUID) *models.LedgerEntry {
	t.Helper()
	entry := &models.LedgerEntry{
		ID:          uuid.New(),
		Type:        entryType,
		AmountCents: amount,
		Currency:    "CAD",
		ContractID:  contractID,
	}
	require.NoError(t, repo.Create(context.Background(), entry))
	return entry
}

func TestRepository_SumByType(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	seedEntry(t, repo, enums.LedgerEntryTypeInvestment, 300_000_000, nil)
	seedEntry(t, repo, enums.LedgerEntryTypeInvestment, 200_000_000, nil)
	seedEntry(t, repo, enums.LedgerEntryTypePlatformFee, 6_000_000, nil)

	total, err := repo.SumByType(context.Background(), enums.LedgerEntryTypeInvestment)
	require.NoError(t, err)
	require.Equal(t, int64(500_000_000), total)

	fees, err := repo.SumByType(context.Background(), enums.LedgerEntryTypePlatformFee)
	require.NoError(t, err)
	require.Equal(t, int64(6_000_000), fees)
}

func TestRepository_SumByTypeEmpty(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	total, err := repo.SumByType(context.Background(), enums.LedgerEntryTypeExitFee)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestRepository_ListByContractID(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	contractID := uuid.New()
	otherID := uuid.New()
	seedEntry(t, repo, enums.LedgerEntryTypeInvestment, 100_000, &contractID)
	seedEntry(t, repo, enums.LedgerEntryTypePayout, 5_000, &contractID)
	seedEntry(t, repo, enums.LedgerEntryTypeInvestment, 999, &otherID)

	entries, err := repo.ListByContractID(context.Background(), contractID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		require.NotNil(t, entry.ContractID)
		require.Equal(t, contractID, *entry.ContractID)
	}
}

func TestRepository_ListByTypePagination(t *testing.T) {
	repo := NewRepository(newTestDB(t))

	for i := 0; i < 5; i++ {
		seedEntry(t, repo, enums.LedgerEntryTypePayout, int64(1_000+i), nil)
	}

	page, err := repo.ListByType(context.Background(), enums.LedgerEntryTypePayout, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
}
