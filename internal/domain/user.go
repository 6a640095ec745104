package domain

import "time"

// User is any authenticated identity inside an organization.
type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	OrganizationID string
	TeamID         *string
	Document       *string
	DocumentType   *DocumentType
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasRole reports whether the user holds one of roles.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
