package domain

import "time"

// Team groups agents inside an organization. Slug is fixed at creation.
type Team struct {
	ID             string
	Name           string
	DisplayName    string
	Slug           string
	Description    string
	OrganizationID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
