package enums

import (
	"fmt"
	"strings"
)

// Role is the principal role carried by the authentication boundary.
type Role string

const (
	RoleFounder  Role = "founder"
	RoleInvestor Role = "investor"
	RoleAdmin    Role = "admin"
)

var validRoles = []Role{
	RoleFounder,
	RoleInvestor,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is known.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
