package payments

import (
	"context"

	"github.com/google/uuid"
)

// Provider is the external money-movement interface. References returned by
// both calls are opaque idempotent handles; callers persist them and never
// parse them.
type Provider interface {
	// Charge collects funds from the payer and returns a payment reference.
	Charge(ctx context.Context, payerID uuid.UUID, amountCents int64) (string, error)
	// Payout transfers funds to the payee and returns a payout reference.
	Payout(ctx context.Context, payeeID uuid.UUID, amountCents int64) (string, error)
}
