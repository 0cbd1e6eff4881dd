package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

type fakeRepository struct {
	createFn    func(ctx context.Context, entry *models.LedgerEntry) error
	sumFn       func(ctx context.Context, entryType enums.LedgerEntryType) (int64, error)
	listByType  []models.LedgerEntry
	listByCtrct []models.LedgerEntry
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) ListByContractID(ctx context.Context, contractID uuid.UUID) ([]models.LedgerEntry, error) {
	return f.listByCtrct, nil
}

func (f *fakeRepository) ListByType(ctx context.Context, entryType enums.LedgerEntryType, limit, offset int) ([]models.LedgerEntry, error) {
	return f.listByType, nil
}

func (f *fakeRepository) SumByType(ctx context.Context, entryType enums.LedgerEntryType) (int64, error) {
	if f.sumFn != nil {
		return f.sumFn(ctx, entryType)
	}
	return 0, nil
}

func TestService_Record(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	contractID := uuid.New()
	actorID := uuid.New()
	metadata := json.RawMessage(`{"payout_ref":"sim_payout_abc"}`)
	input := RecordEntryInput{
		Type:        enums.LedgerEntryTypePayout,
		AmountCents: 125_000,
		ActorUserID: &actorID,
		ContractID:  &contractID,
		Metadata:    metadata,
	}

	var created *models.LedgerEntry
	repo.createFn = func(ctx context.Context, entry *models.LedgerEntry) error {
		created = entry
		return nil
	}

	got, err := svc.Record(context.Background(), input)
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if created == nil {
		t.Fatal("expected ledger entry to be created")
	}
	if created.Type != input.Type || created.AmountCents != input.AmountCents {
		t.Fatalf("unexpected ledger entry data: %+v", created)
	}
	if created.Currency != "CAD" {
		t.Fatalf("expected default currency CAD, got %q", created.Currency)
	}
	if created.ContractID == nil || *created.ContractID != contractID {
		t.Fatalf("missing contract reference: %+v", created)
	}
	if string(created.Metadata) != string(metadata) {
		t.Fatalf("metadata mismatch: %s", created.Metadata)
	}
	if got != created {
		t.Fatalf("service should return created entry")
	}
}

func TestService_RecordValidation(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tests := []struct {
		name  string
		input RecordEntryInput
	}{
		{
			name: "invalid type",
			input: RecordEntryInput{
				Type:        enums.LedgerEntryType("refund"),
				AmountCents: 100,
			},
		},
		{
			name: "zero amount",
			input: RecordEntryInput{
				Type:        enums.LedgerEntryTypeInvestment,
				AmountCents: 0,
			},
		},
		{
			name: "negative amount",
			input: RecordEntryInput{
				Type:        enums.LedgerEntryTypeInvestment,
				AmountCents: -500,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Record(context.Background(), tc.input); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestService_RecordPropagatesRepoError(t *testing.T) {
	repoErr := errors.New("db down")
	repo := &fakeRepository{
		createFn: func(ctx context.Context, entry *models.LedgerEntry) error {
			return repoErr
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	if _, err := svc.Record(context.Background(), RecordEntryInput{
		Type:        enums.LedgerEntryTypeInvestment,
		AmountCents: 100,
	}); !errors.Is(err, repoErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
}

func TestService_SumByTypeValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	if _, err := svc.SumByType(context.Background(), enums.LedgerEntryType("bogus")); err == nil {
		t.Fatal("expected error for invalid entry type")
	}
}
