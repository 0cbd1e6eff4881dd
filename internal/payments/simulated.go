package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/dmarchetti-dev/revshare-backend/pkg/errors"
)

// Simulated is the development payment provider. It mints locally unique
// references without touching any external service.
type Simulated struct{}

// NewSimulated returns the simulated provider.
func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Charge(ctx context.Context, payerID uuid.UUID, amountCents int64) (string, error) {
	if err := validate(payerID, amountCents); err != nil {
		return "", err
	}
	return "sim_invest_" + refSuffix(), nil
}

func (s *Simulated) Payout(ctx context.Context, payeeID uuid.UUID, amountCents int64) (string, error) {
	if err := validate(payeeID, amountCents); err != nil {
		return "", err
	}
	return "sim_payout_" + refSuffix(), nil
}

func validate(partyID uuid.UUID, amountCents int64) error {
	if partyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "party id is required")
	}
	if amountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("amount must be positive, got %d", amountCents))
	}
	return nil
}

func refSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// fall back to a uuid fragment; references only need uniqueness
		return uuid.NewString()[:8]
	}
	return hex.EncodeToString(buf)
}
