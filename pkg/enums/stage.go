package enums

import (
	"fmt"
	"strings"
)

// Stage is the company maturity bucket fed into tier pricing.
type Stage string

const (
	StageSeed   Stage = "seed"
	StageGrowth Stage = "growth"
)

var validStages = []Stage{
	StageSeed,
	StageGrowth,
}

// IsValid reports whether the value is known.
func (s Stage) IsValid() bool {
	for _, candidate := range validStages {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStage converts raw input into a Stage.
func ParseStage(value string) (Stage, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stage %q", value)
}
