package enums

import "fmt"

// LedgerEntryType maps to the ledger_entry_type_enum enum in Postgres.
type LedgerEntryType string

const (
	LedgerEntryTypeInvestment  LedgerEntryType = "investment"
	LedgerEntryTypePlatformFee LedgerEntryType = "platform_fee"
	LedgerEntryTypePayout      LedgerEntryType = "payout"
	LedgerEntryTypeExitPayout  LedgerEntryType = "exit_payout"
	LedgerEntryTypeExitFee     LedgerEntryType = "exit_fee"
	LedgerEntryTypeReferralFee LedgerEntryType = "referral_fee"
)

var validLedgerEntryTypes = []LedgerEntryType{
	LedgerEntryTypeInvestment,
	LedgerEntryTypePlatformFee,
	LedgerEntryTypePayout,
	LedgerEntryTypeExitPayout,
	LedgerEntryTypeExitFee,
	LedgerEntryTypeReferralFee,
}

// LedgerEntryTypes returns every canonical entry type in schema order.
func LedgerEntryTypes() []LedgerEntryType {
	out := make([]LedgerEntryType, len(validLedgerEntryTypes))
	copy(out, validLedgerEntryTypes)
	return out
}

// IsValid reports whether the value matches the canonical ledger entry enum.
func (t LedgerEntryType) IsValid() bool {
	for _, candidate := range validLedgerEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerEntryType converts raw input into LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	for _, candidate := range validLedgerEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}
