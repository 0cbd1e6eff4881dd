package loans

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/internal/startups"
	"github.com/dmarchetti-dev/revshare-backend/pkg/auth"
	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
	"github.com/dmarchetti-dev/revshare-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:loans_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS startups (
  id TEXT PRIMARY KEY,
  founder_user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  country TEXT NOT NULL DEFAULT 'CA',
  website TEXT,
  description TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`,
		`CREATE TABLE IF NOT EXISTS loan_offers (
  id TEXT PRIMARY KEY,
  startup_id TEXT NOT NULL,
  exit_request_id TEXT NOT NULL UNIQUE,
  amount_cents INTEGER NOT NULL,
  fee_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'offered',
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type fixture struct {
	svc       Service
	repo      Repository
	founder   auth.Principal
	startupID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()

	startupRepo := startups.NewRepository(db)
	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})

	founderID := uuid.New()
	startup := &models.Startup{ID: uuid.New(), FounderUserID: founderID, Name: "Maple Metrics", Country: "CA"}
	require.NoError(t, startupRepo.Create(ctx, startup))

	svc, err := NewService(repo, startupRepo, logg)
	require.NoError(t, err)

	return &fixture{
		svc:       svc,
		repo:      repo,
		founder:   auth.Principal{ID: founderID, Role: enums.RoleFounder},
		startupID: startup.ID,
	}
}

func (f *fixture) seedOffer(t *testing.T, amountCents int64) *models.LoanOffer {
	t.Helper()
	offer := &models.LoanOffer{
		ID:            uuid.New(),
		StartupID:     f.startupID,
		ExitRequestID: uuid.New(),
		AmountCents:   amountCents,
		FeeCents:      amountCents / 25,
		Status:        enums.LoanOfferStatusOffered,
	}
	require.NoError(t, f.repo.Create(context.Background(), offer))
	return offer
}

func TestListByStartup(t *testing.T) {
	f := newFixture(t)

	f.seedOffer(t, 480_000)
	f.seedOffer(t, 120_000)

	offers, err := f.svc.ListByStartup(context.Background(), f.founder, f.startupID)
	require.NoError(t, err)
	assert.Len(t, offers, 2)
}

func TestListForbiddenForStrangers(t *testing.T) {
	f := newFixture(t)

	stranger := auth.Principal{ID: uuid.New(), Role: enums.RoleFounder}
	_, err := f.svc.ListByStartup(context.Background(), stranger, f.startupID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}

func TestAcceptTransitionsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	offer := f.seedOffer(t, 480_000)

	accepted, err := f.svc.Accept(ctx, f.founder, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.LoanOfferStatusAccepted, accepted.Status)

	_, err = f.svc.Decline(ctx, f.founder, offer.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
}

func TestDecline(t *testing.T) {
	f := newFixture(t)
	offer := f.seedOffer(t, 480_000)

	declined, err := f.svc.Decline(context.Background(), f.founder, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.LoanOfferStatusDeclined, declined.Status)
}

func TestGetUnknownOffer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), f.founder, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestAdminListPages(t *testing.T) {
	f := newFixture(t)

	f.seedOffer(t, 480_000)
	f.seedOffer(t, 120_000)
	f.seedOffer(t, 60_000)

	admin := auth.Principal{ID: uuid.New(), Role: enums.RoleAdmin}
	offers, err := f.svc.List(context.Background(), admin, 2, 0)
	require.NoError(t, err)
	assert.Len(t, offers, 2)

	rest, err := f.svc.List(context.Background(), admin, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestAdminListForbiddenForFounders(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(context.Background(), f.founder, 50, 0)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
}
