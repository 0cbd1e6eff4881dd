package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarchetti-dev/revshare-backend/pkg/db/models"
	"github.com/dmarchetti-dev/revshare-backend/pkg/enums"
)

// Service defines operations that record and reconcile ledger entries.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Record(ctx context.Context, input RecordEntryInput) (*models.LedgerEntry, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.LedgerEntry, error)
	ListByType(ctx context.Context, entryType enums.LedgerEntryType, limit, offset int) ([]models.LedgerEntry, error)
	SumByType(ctx context.Context, entryType enums.LedgerEntryType) (int64, error)
}

type service struct {
	repo Repository
}

// RecordEntryInput captures the immutable data a ledger entry requires.
type RecordEntryInput struct {
	Type        enums.LedgerEntryType `json:"type"`
	AmountCents int64                 `json:"amount_cents"`
	Currency    string                `json:"currency"`
	ActorUserID *uuid.UUID            `json:"actor_user_id"`
	StartupID   *uuid.UUID            `json:"startup_id"`
	RoundID     *uuid.UUID            `json:"round_id"`
	ContractID  *uuid.UUID            `json:"contract_id"`
	Metadata    json.RawMessage       `json:"metadata"`
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

func (s *service) Record(ctx context.Context, input RecordEntryInput) (*models.LedgerEntry, error) {
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid ledger entry type %q", input.Type)
	}
	if input.AmountCents <= 0 {
		return nil, fmt.Errorf("ledger amount must be positive, got %d", input.AmountCents)
	}

	currency := input.Currency
	if currency == "" {
		currency = "CAD"
	}

	entry := &models.LedgerEntry{
		Type:        input.Type,
		AmountCents: input.AmountCents,
		Currency:    currency,
		ActorUserID: input.ActorUserID,
		StartupID:   input.StartupID,
		RoundID:     input.RoundID,
		ContractID:  input.ContractID,
		Metadata:    input.Metadata,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ListByContract(ctx context.Context, contractID uuid.UUID) ([]models.LedgerEntry, error) {
	if contractID == uuid.Nil {
		return nil, fmt.Errorf("contract id is required")
	}
	return s.repo.ListByContractID(ctx, contractID)
}

func (s *service) ListByType(ctx context.Context, entryType enums.LedgerEntryType, limit, offset int) ([]models.LedgerEntry, error) {
	if !entryType.IsValid() {
		return nil, fmt.Errorf("invalid ledger entry type %q", entryType)
	}
	return s.repo.ListByType(ctx, entryType, limit, offset)
}

func (s *service) SumByType(ctx context.Context, entryType enums.LedgerEntryType) (int64, error) {
	if !entryType.IsValid() {
		return 0, fmt.Errorf("invalid ledger entry type %q", entryType)
	}
	return s.repo.SumByType(ctx, entryType)
}
