package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/testutil"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

type recordingCache struct {
	invalidated []string
}

func (c *recordingCache) Invalidate(_ context.Context, organizationID string) {
	c.invalidated = append(c.invalidated, organizationID)
}

func TestTeamLifecycle(t *testing.T) {
	store := testutil.NewStore()
	acme := seedTenant(t, store, "acme", "11222333000181")
	other := seedTenant(t, store, "other", "99888777000166")
	manager := seedUser(t, store, acme.org.ID, domain.RoleManager, nil)
	svc := NewTeamService(store.Teams())
	ctx := context.Background()

	team, err := svc.Create(ctx, acme.admin, TeamInput{
		Name:        domain.Some("  Suporte   Nível 2 "),
		DisplayName: domain.Some("Level 2"),
		Description: domain.Some("Escalations"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Suporte Nível 2", team.Name)
	assert.Equal(t, "suporte-nivel-2", team.Slug)

	_, err = svc.Create(ctx, acme.admin, TeamInput{Name: domain.Some("Suporte Nivel 2"), DisplayName: domain.Some("Dup")})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	_, err = svc.Create(ctx, other.admin, TeamInput{Name: domain.Some("Suporte Nivel 2"), DisplayName: domain.Some("Same slug other tenant")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, acme.admin, TeamInput{Name: domain.Some("Ops"), DisplayName: domain.Some("Ops, night shift")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.Create(ctx, manager, TeamInput{Name: domain.Some("Ops"), DisplayName: domain.Some("Ops")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = svc.Create(ctx, acme.admin, TeamInput{Name: domain.Some("Ops"), DisplayName: domain.Some("Ops"), Description: domain.Some("🚀 fast")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.Create(ctx, acme.admin, TeamInput{Name: domain.Some("Ops")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	branded, err := svc.Create(ctx, acme.admin, TeamInput{Name: domain.Some("Brand"), DisplayName: domain.Some("Brand"), Description: domain.Some("Suporte™")})
	require.NoError(t, err)
	assert.Equal(t, "Suporte™", branded.Description)
	require.NoError(t, svc.Delete(ctx, acme.admin, branded.ID))

	updated, err := svc.Update(ctx, acme.admin, team.ID, TeamInput{DisplayName: domain.Some("Tier 2")})
	require.NoError(t, err)
	assert.Equal(t, "Tier 2", updated.DisplayName)
	assert.Equal(t, "suporte-nivel-2", updated.Slug)
	assert.Equal(t, "Escalations", updated.Description)

	_, err = svc.Get(ctx, other.admin, team.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	page, err := svc.List(ctx, manager, "nivel", PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	count, err := svc.Count(ctx, acme.admin, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.Delete(ctx, acme.admin, team.ID))
	_, err = svc.Get(ctx, acme.admin, team.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestCategoryMutationsInvalidateCache(t *testing.T) {
	store := testutil.NewStore()
	acme := seedTenant(t, store, "acme", "11222333000181")
	manager := seedUser(t, store, acme.org.ID, domain.RoleManager, nil)
	customer := seedUser(t, store, acme.org.ID, domain.RoleCustomer, nil)
	cache := &recordingCache{}
	svc := NewCategoryService(store.Categories(), cache)
	ctx := context.Background()

	category, err := svc.Create(ctx, manager, CategoryInput{Name: domain.Some("Hardware"), Description: domain.Some("Printers and laptops")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, customer, CategoryInput{Name: domain.Some("Billing")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = svc.Create(ctx, acme.admin, CategoryInput{Name: domain.Some("Bad<name>")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	updated, err := svc.Update(ctx, acme.admin, category.ID, CategoryInput{Description: domain.Null[string]()})
	require.NoError(t, err)
	assert.Equal(t, "Hardware", updated.Name)
	assert.Empty(t, updated.Description)

	names, err := store.Categories().ListNames(ctx, acme.org.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hardware"}, names)

	got, err := svc.Get(ctx, customer, category.ID)
	require.NoError(t, err)
	assert.Equal(t, category.ID, got.ID)

	require.NoError(t, svc.Delete(ctx, manager, category.ID))
	assert.Equal(t, []string{acme.org.ID, acme.org.ID, acme.org.ID}, cache.invalidated)
}

func TestCategoryDescriptionIsNormalizedBeforeSymbolCheck(t *testing.T) {
	store := testutil.NewStore()
	acme := seedTenant(t, store, "acme", "11222333000181")
	svc := NewCategoryService(store.Categories(), nil)
	ctx := context.Background()

	category, err := svc.Create(ctx, acme.admin, CategoryInput{Name: domain.Some("Licensing"), Description: domain.Some("Office™ seats")})
	require.NoError(t, err)
	assert.Equal(t, "Office™ seats", category.Description)

	_, err = svc.Create(ctx, acme.admin, CategoryInput{Name: domain.Some("Launch"), Description: domain.Some("🚀 rollout")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestUserServiceUpdateAndDelete(t *testing.T) {
	store := testutil.NewStore()
	acme := seedTenant(t, store, "acme", "11222333000181")
	other := seedTenant(t, store, "other", "99888777000166")
	team := seedTeam(t, store, acme.org.ID, "support")
	foreignTeam := seedTeam(t, store, other.org.ID, "ops")
	agent := seedUser(t, store, acme.org.ID, domain.RoleAgent, nil)
	seedUser(t, store, acme.org.ID, domain.RoleCustomer, nil)
	svc := NewUserService(store.Users(), store.Teams())
	ctx := context.Background()

	updated, err := svc.Update(ctx, acme.admin, agent.ID, UserUpdateInput{
		Name:     domain.Some("Bruno"),
		TeamID:   domain.Some(team.ID),
		Document: domain.Some("11.222.333/0001-81"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bruno", updated.Name)
	assert.Equal(t, team.ID, *updated.TeamID)
	assert.Equal(t, domain.DocumentTypeCNPJ, *updated.DocumentType)

	updated, err = svc.Update(ctx, acme.admin, agent.ID, UserUpdateInput{TeamID: domain.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, updated.TeamID)
	assert.Equal(t, "Bruno", updated.Name)

	_, err = svc.Update(ctx, acme.admin, agent.ID, UserUpdateInput{TeamID: domain.Some(foreignTeam.ID)})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = svc.Update(ctx, agent, agent.ID, UserUpdateInput{Name: domain.Some("Me")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	agents, err := svc.Count(ctx, acme.admin, UserListInput{Role: "agent"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, agents)

	page, err := svc.List(ctx, acme.admin, UserListInput{Search: "bruno"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, agent.ID, page.Items[0].ID)

	_, err = svc.Get(ctx, other.admin, agent.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	assert.True(t, apperrors.IsCode(svc.Delete(ctx, acme.admin, acme.admin.ID), apperrors.CodeValidation))
	require.NoError(t, svc.Delete(ctx, acme.admin, agent.ID))
	_, err = svc.Get(ctx, acme.admin, agent.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
