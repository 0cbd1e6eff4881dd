package enums

import (
	"fmt"
	"strings"
)

// TierLevel identifies one of the three priced offers generated per round.
type TierLevel string

const (
	TierLevelLow    TierLevel = "low"
	TierLevelMedium TierLevel = "medium"
	TierLevelHigh   TierLevel = "high"
)

// TierLevels lists the levels in pricing order, cheapest share first.
var TierLevels = []TierLevel{
	TierLevelLow,
	TierLevelMedium,
	TierLevelHigh,
}

// String implements fmt.Stringer.
func (t TierLevel) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t TierLevel) IsValid() bool {
	for _, candidate := range TierLevels {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTierLevel converts raw input into a TierLevel.
func ParseTierLevel(value string) (TierLevel, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range TierLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tier level %q", value)
}
