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

// TeamService manages teams of the caller's organization.
type TeamService struct {
	teams repository.TeamRepository
}

// TeamInput is used for both create and update. On update unset fields keep their value.
type TeamInput struct {
	Name        domain.Optional[string]
	DisplayName domain.Optional[string]
	Description domain.Optional[string]
}

// NewTeamService constructs the service.
func NewTeamService(teams repository.TeamRepository) *TeamService {
	return &TeamService{teams: teams}
}

// Create adds a team. The slug is derived from the name once and never changes.
func (s *TeamService) Create(ctx context.Context, actor *domain.User, in TeamInput) (*domain.Team, error) {
	if err := auth.EnsureRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	team := &domain.Team{OrganizationID: actor.OrganizationID}
	if err := applyTeamInput(team, in); err != nil {
		return nil, err
	}
	if team.Name == "" || team.DisplayName == "" {
		return nil, apperrors.NewValidationError("name and displayName are required", map[string]any{"field": "name"})
	}
	team.Slug = validation.ToSlug(team.Name)

	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

func applyTeamInput(team *domain.Team, in TeamInput) error {
	if v, ok := optionalText(in.Name); ok {
		if err := validation.ValidateString(v, "name", validation.StrictName, true); err != nil {
			return err
		}
		team.Name = v
	}
	if v, ok := optionalText(in.DisplayName); ok {
		if err := validation.ValidateString(v, "displayName", validation.StrictName, true); err != nil {
			return err
		}
		team.DisplayName = v
	}
	if in.Description.Set {
		v := ""
		if in.Description.Value != nil {
			v = *in.Description.Value
		}
		if err := validation.ValidateString(v, "description", validation.DescriptionNoEmoji, true); err != nil {
			return err
		}
		team.Description = v
	}
	return nil
}

// optionalText returns the normalized value of o when it is set to non-blank text.
func optionalText(o domain.Optional[string]) (string, bool) {
	if !o.Set || o.Value == nil {
		return "", false
	}
	v := validation.NormalizeText(*o.Value)
	return v, v != ""
}

// List returns one page of teams.
func (s *TeamService) List(ctx context.Context, actor *domain.User, search string, page PageRequest) (*PageResult[domain.Team], error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	filter := repository.TeamFilter{OrganizationID: actor.OrganizationID, Search: search, Page: page.toRepository()}
	items, err := s.teams.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.teams.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Team{}
	}
	p := page.normalized()
	return &PageResult[domain.Team]{Items: items, Page: p.Page, Size: p.Size, Total: total}, nil
}

// Count counts the organization's teams matching search.
func (s *TeamService) Count(ctx context.Context, actor *domain.User, search string) (int64, error) {
	if actor == nil {
		return 0, apperrors.NewUnauthorized("authentication required")
	}
	return s.teams.Count(ctx, repository.TeamFilter{OrganizationID: actor.OrganizationID, Search: search})
}

// Get loads a team of the caller's organization.
func (s *TeamService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", map[string]any{"id": id})
		}
		return nil, err
	}
	if err := auth.EnsureSameTenant(actor, team.OrganizationID); err != nil {
		return nil, err
	}
	return team, nil
}

// Update changes name, display name or description.
func (s *TeamService) Update(ctx context.Context, actor *domain.User, id string, in TeamInput) (*domain.Team, error) {
	if err := auth.EnsureRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	team, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := applyTeamInput(team, in); err != nil {
		return nil, err
	}
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// Delete removes a team.
func (s *TeamService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if err := auth.EnsureRole(actor, domain.RoleAdmin); err != nil {
		return err
	}
	team, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.teams.Delete(ctx, team.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
