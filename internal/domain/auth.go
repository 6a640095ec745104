package domain

import "strings"

// Role is the coarse permission level carried by a user.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleAgent    Role = "AGENT"
	RoleCustomer Role = "CUSTOMER"
	RoleManager  Role = "MANAGER"
)

// ParseRole accepts "agent", "AGENT" and "ROLE_AGENT" alike.
func ParseRole(raw string) (Role, bool) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	value = strings.TrimPrefix(value, "ROLE_")
	switch Role(value) {
	case RoleAdmin, RoleAgent, RoleCustomer, RoleManager:
		return Role(value), true
	}
	return "", false
}
