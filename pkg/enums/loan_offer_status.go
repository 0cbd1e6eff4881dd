package enums

import "fmt"

// LoanOfferStatus tracks companion financing offers created by loan settlements.
type LoanOfferStatus string

const (
	LoanOfferStatusOffered  LoanOfferStatus = "offered"
	LoanOfferStatusAccepted LoanOfferStatus = "accepted"
	LoanOfferStatusDeclined LoanOfferStatus = "declined"
)

var validLoanOfferStatuses = []LoanOfferStatus{
	LoanOfferStatusOffered,
	LoanOfferStatusAccepted,
	LoanOfferStatusDeclined,
}

// IsValid reports whether the value is known.
func (s LoanOfferStatus) IsValid() bool {
	for _, candidate := range validLoanOfferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLoanOfferStatus converts raw input into LoanOfferStatus.
func ParseLoanOfferStatus(value string) (LoanOfferStatus, error) {
	for _, candidate := range validLoanOfferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid loan offer status %q", value)
}
