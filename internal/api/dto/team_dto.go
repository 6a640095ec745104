package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TeamRequest is used for create and partial update.
type TeamRequest struct {
	Name        domain.Optional[string] `json:"name"`
	DisplayName domain.Optional[string] `json:"displayName"`
	Description domain.Optional[string] `json:"description"`
}

// TeamResponse view.
type TeamResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DisplayName    string    `json:"displayName"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	OrganizationID string    `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewTeamResponse maps a team.
func NewTeamResponse(t *domain.Team) TeamResponse {
	return TeamResponse{
		ID:             t.ID,
		Name:           t.Name,
		DisplayName:    t.DisplayName,
		Slug:           t.Slug,
		Description:    t.Description,
		OrganizationID: t.OrganizationID,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// CategoryRequest is used for create and partial update.
type CategoryRequest struct {
	Name        domain.Optional[string] `json:"name"`
	Description domain.Optional[string] `json:"description"`
}

// CategoryResponse view.
type CategoryResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	OrganizationID string    `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewCategoryResponse maps a category.
func NewCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		OrganizationID: c.OrganizationID,
		CreatedAt:      c.CreatedAt,
	}
}
