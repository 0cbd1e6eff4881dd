package enums

import "fmt"

// RoundStatus maps to the round_status_enum enum in Postgres.
type RoundStatus string

const (
	RoundStatusDraft     RoundStatus = "draft"
	RoundStatusPublished RoundStatus = "published"
	RoundStatusClosed    RoundStatus = "closed"
)

var validRoundStatuses = []RoundStatus{
	RoundStatusDraft,
	RoundStatusPublished,
	RoundStatusClosed,
}

// IsValid reports whether the value matches the canonical round status enum.
func (s RoundStatus) IsValid() bool {
	for _, candidate := range validRoundStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRoundStatus converts raw input into RoundStatus.
func ParseRoundStatus(value string) (RoundStatus, error) {
	for _, candidate := range validRoundStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid round status %q", value)
}
