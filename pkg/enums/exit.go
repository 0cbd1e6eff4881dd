package enums

import (
	"fmt"
	"strings"
)

// ExitType selects which fee schedule applies to an exit request.
type ExitType string

const (
	ExitTypeQuarterly ExitType = "quarterly"
	ExitTypeOffcycle  ExitType = "offcycle"
)

var validExitTypes = []ExitType{
	ExitTypeQuarterly,
	ExitTypeOffcycle,
}

// IsValid reports whether the value is known.
func (t ExitType) IsValid() bool {
	for _, candidate := range validExitTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseExitType converts raw input into an ExitType.
func ParseExitType(value string) (ExitType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validExitTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid exit type %q", value)
}

// ExitStatus tracks the exit request state machine. Requested is the only
// non-terminal state.
type ExitStatus string

const (
	ExitStatusRequested ExitStatus = "requested"
	ExitStatusSettled   ExitStatus = "settled"
	ExitStatusRejected  ExitStatus = "rejected"
)

var validExitStatuses = []ExitStatus{
	ExitStatusRequested,
	ExitStatusSettled,
	ExitStatusRejected,
}

// IsValid reports whether the value is known.
func (s ExitStatus) IsValid() bool {
	for _, candidate := range validExitStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s ExitStatus) IsTerminal() bool {
	return s == ExitStatusSettled || s == ExitStatusRejected
}

// SettlementMethod selects how a settled exit pays out.
type SettlementMethod string

const (
	SettlementMethodCash SettlementMethod = "cash"
	SettlementMethodLoan SettlementMethod = "loan"
)

var validSettlementMethods = []SettlementMethod{
	SettlementMethodCash,
	SettlementMethodLoan,
}

// IsValid reports whether the value is known.
func (m SettlementMethod) IsValid() bool {
	for _, candidate := range validSettlementMethods {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseSettlementMethod converts raw input into a SettlementMethod.
func ParseSettlementMethod(value string) (SettlementMethod, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validSettlementMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement method %q", value)
}
