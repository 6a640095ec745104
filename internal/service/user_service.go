package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/validation"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// UserService reads and maintains users of the caller's organization. Creation
// goes through AuthService.RegisterUser.
type UserService struct {
	users repository.UserRepository
	teams repository.TeamRepository
}

// UserUpdateInput is a partial update applied by an admin.
type UserUpdateInput struct {
	Name     domain.Optional[string]
	TeamID   domain.Optional[string]
	Document domain.Optional[string]
}

// UserListInput filters user listings.
type UserListInput struct {
	Role   string
	Search string
	Page   PageRequest
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, teams repository.TeamRepository) *UserService {
	return &UserService{users: users, teams: teams}
}

func (s *UserService) buildFilter(actor *domain.User, in UserListInput) (repository.UserFilter, error) {
	if actor == nil {
		return repository.UserFilter{}, apperrors.NewUnauthorized("authentication required")
	}
	filter := repository.UserFilter{OrganizationID: actor.OrganizationID, Search: strings.TrimSpace(in.Search)}
	if strings.TrimSpace(in.Role) != "" {
		role, ok := domain.ParseRole(in.Role)
		if !ok {
			return filter, apperrors.NewValidationError("invalid role: "+in.Role, map[string]any{"field": "role"})
		}
		filter.Role = &role
	}
	return filter, nil
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, actor *domain.User, in UserListInput) (*PageResult[domain.User], error) {
	filter, err := s.buildFilter(actor, in)
	if err != nil {
		return nil, err
	}
	filter.Page = in.Page.toRepository()
	items, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.User{}
	}
	p := in.Page.normalized()
	return &PageResult[domain.User]{Items: items, Page: p.Page, Size: p.Size, Total: total}, nil
}

// Count counts users, optionally of one role.
func (s *UserService) Count(ctx context.Context, actor *domain.User, in UserListInput) (int64, error) {
	filter, err := s.buildFilter(actor, in)
	if err != nil {
		return 0, err
	}
	return s.users.Count(ctx, filter)
}

// Get loads a user of the caller's organization.
func (s *UserService) Get(ctx context.Context, actor *domain.User, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}
	if err := auth.EnsureSameTenant(actor, user.OrganizationID); err != nil {
		return nil, err
	}
	return user, nil
}

// Update changes name, team assignment or document.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id string, in UserUpdateInput) (*domain.User, error) {
	if err := auth.EnsureRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Name.Set {
		name, ok := optionalText(in.Name)
		if !ok {
			return nil, apperrors.NewValidationError("name cannot be empty", map[string]any{"field": "name"})
		}
		if err := validation.ValidateString(name, "name", validation.StrictName, true); err != nil {
			return nil, err
		}
		user.Name = name
	}
	if in.TeamID.Set && in.TeamID.Value != nil {
		team, err := s.teams.GetByID(ctx, *in.TeamID.Value)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("team", map[string]any{"id": *in.TeamID.Value})
			}
			return nil, err
		}
		if err := auth.EnsureSameTenant(actor, team.OrganizationID); err != nil {
			return nil, err
		}
	}
	in.TeamID.Apply(&user.TeamID)
	if in.Document.Set {
		if in.Document.Value == nil || strings.TrimSpace(*in.Document.Value) == "" {
			user.Document = nil
			user.DocumentType = nil
		} else {
			docType, digits, err := validation.ClassifyDocument(*in.Document.Value)
			if err != nil {
				return nil, err
			}
			user.Document = &digits
			user.DocumentType = &docType
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Delete removes a user other than the caller.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := auth.EnsureRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	if actor.ID == id {
		return apperrors.NewValidationError("you cannot delete your own account", map[string]any{"field": "id"})
	}
	user, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
