package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/validation"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// CategoryCache is invalidated whenever an organization's categories change.
type CategoryCache interface {
	Invalidate(ctx context.Context, organizationID string)
}

// CategoryService manages ticket categories.
type CategoryService struct {
	categories repository.CategoryRepository
	cache      CategoryCache
}

// CategoryInput is used for both create and update.
type CategoryInput struct {
	Name        domain.Optional[string]
	Description domain.Optional[string]
}

// NewCategoryService constructs the service. cache may be nil.
func NewCategoryService(categories repository.CategoryRepository, cache CategoryCache) *CategoryService {
	return &CategoryService{categories: categories, cache: cache}
}

var categoryWriters = []domain.Role{domain.RoleAdmin, domain.RoleManager}

// Create adds a category.
func (s *CategoryService) Create(ctx context.Context, actor *domain.User, in CategoryInput) (*domain.Category, error) {
	if err := auth.EnsureRole(actor, categoryWriters...); err != nil {
		return nil, err
	}
	category := &domain.Category{OrganizationID: actor.OrganizationID}
	if err := applyCategoryInput(category, in); err != nil {
		return nil, err
	}
	if category.Name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidate(ctx, actor.OrganizationID)
	return category, nil
}

func applyCategoryInput(category *domain.Category, in CategoryInput) error {
	if v, ok := optionalText(in.Name); ok {
		if err := validation.ValidateString(v, "name", validation.StrictName, true); err != nil {
			return err
		}
		category.Name = v
	}
	if in.Description.Set {
		v := ""
		if in.Description.Value != nil {
			v = *in.Description.Value
		}
		if err := validation.ValidateString(v, "description", validation.DescriptionNoEmoji, true); err != nil {
			return err
		}
		category.Description = v
	}
	return nil
}

// List returns one page of categories.
func (s *CategoryService) List(ctx context.Context, actor *domain.User, search string, page PageRequest) (*PageResult[domain.Category], error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	filter := repository.CategoryFilter{OrganizationID: actor.OrganizationID, Search: search, Page: page.toRepository()}
	items, err := s.categories.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.categories.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Category{}
	}
	p := page.normalized()
	return &PageResult[domain.Category]{Items: items, Page: p.Page, Size: p.Size, Total: total}, nil
}

// Count counts categories matching search.
func (s *CategoryService) Count(ctx context.Context, actor *domain.User, search string) (int64, error) {
	if actor == nil {
		return 0, apperrors.NewUnauthorized("authentication required")
	}
	return s.categories.Count(ctx, repository.CategoryFilter{OrganizationID: actor.OrganizationID, Search: search})
}

// Get loads a category of the caller's organization.
func (s *CategoryService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"id": id})
		}
		return nil, err
	}
	if err := auth.EnsureSameTenant(actor, category.OrganizationID); err != nil {
		return nil, err
	}
	return category, nil
}

// Update applies a partial update.
func (s *CategoryService) Update(ctx context.Context, actor *domain.User, id string, in CategoryInput) (*domain.Category, error) {
	if err := auth.EnsureRole(actor, categoryWriters...); err != nil {
		return nil, err
	}
	category, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyCategoryInput(category, in); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidate(ctx, actor.OrganizationID)
	return category, nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := auth.EnsureRole(actor, categoryWriters...); err != nil {
		return err
	}
	category, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, category.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.invalidate(ctx, actor.OrganizationID)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context, organizationID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, organizationID)
	}
}
