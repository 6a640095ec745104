package domain

import "time"

// Category is an organization-defined ticket classification.
type Category struct {
	ID             string
	Name           string
	Description    string
	OrganizationID string
	CreatedAt      time.Time
}
