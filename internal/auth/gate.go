package auth

import (
	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// EnsureSameTenant fails with Forbidden when the resource belongs to another
// organization. Existence of foreign rows is never revealed as NotFound.
func EnsureSameTenant(actor *domain.User, organizationID string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.OrganizationID != organizationID {
		return apperrors.NewForbidden("access denied: resource belongs to another organization")
	}
	return nil
}

// EnsureTicketAccess blocks agents without a team from every ticket operation.
func EnsureTicketAccess(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role == domain.RoleAgent && actor.TeamID == nil {
		return apperrors.NewForbidden("agent must belong to a team to access tickets")
	}
	return nil
}

// EnsureRole fails with Forbidden unless actor holds one of roles.
func EnsureRole(actor *domain.User, roles ...domain.Role) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !actor.HasRole(roles...) {
		return apperrors.NewForbidden("insufficient role")
	}
	return nil
}

// ResolveMetricsAgent decides whose metrics actor may see. Agents are pinned to
// themselves and may not name anyone else; other roles see what they ask for.
func ResolveMetricsAgent(actor *domain.User, requested *string) (*string, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.Role != domain.RoleAgent {
		return requested, nil
	}
	if requested != nil && *requested != actor.ID {
		return nil, apperrors.NewForbidden("agents may only view their own metrics")
	}
	id := actor.ID
	return &id, nil
}
