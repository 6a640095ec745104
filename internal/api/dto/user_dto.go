package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

// RegisterTenantRequest creates an organization and its first admin.
type RegisterTenantRequest struct {
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	DocumentType  string `json:"documentType"`
	TaxID         string `json:"taxId"`
	AdminName     string `json:"adminName"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterUserRequest payload for users created by an admin.
type RegisterUserRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	TeamID   *string `json:"teamId"`
	Document *string `json:"document"`
}

// UpdateUserRequest is a partial update.
type UpdateUserRequest struct {
	Name     domain.Optional[string] `json:"name"`
	TeamID   domain.Optional[string] `json:"teamId"`
	Document domain.Optional[string] `json:"document"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Email          string               `json:"email"`
	Role           domain.Role          `json:"role"`
	OrganizationID string               `json:"organizationId"`
	TeamID         *string              `json:"teamId"`
	Document       *string              `json:"document,omitempty"`
	DocumentType   *domain.DocumentType `json:"documentType,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
}

// NewUserResponse maps a user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		OrganizationID: u.OrganizationID,
		TeamID:         u.TeamID,
		Document:       u.Document,
		DocumentType:   u.DocumentType,
		CreatedAt:      u.CreatedAt,
	}
}

// NewAuthResponse maps an issued credential.
func NewAuthResponse(res *service.AuthResult) AuthResponse {
	return AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: NewUserResponse(res.User)}
}

// PageResponse is the list envelope shared by every collection endpoint.
type PageResponse[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// NewPageResponse converts a service page with mapper.
func NewPageResponse[S, T any](page *service.PageResult[S], mapper func(*S) T) PageResponse[T] {
	items := make([]T, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, mapper(&page.Items[i]))
	}
	return PageResponse[T]{Items: items, Page: page.Page, Size: page.Size, Total: page.Total}
}

// CountResponse wraps count endpoints.
type CountResponse struct {
	Count int64 `json:"count"`
}
