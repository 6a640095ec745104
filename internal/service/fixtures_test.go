package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-desk/internal/ai"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/testutil"
)

type tenant struct {
	org   domain.Organization
	admin *domain.User
}

func seedTenant(t *testing.T, store *testutil.Store, slug, taxID string) tenant {
	t.Helper()
	org := &domain.Organization{Name: slug, Slug: slug, DocumentType: domain.DocumentTypeCNPJ, TaxID: taxID}
	admin := &domain.User{Name: "Admin " + slug, Email: "admin@" + slug + ".test", Role: domain.RoleAdmin}
	require.NoError(t, store.Organizations().CreateWithAdmin(context.Background(), org, admin))
	return tenant{org: *org, admin: admin}
}

func seedUser(t *testing.T, store *testutil.Store, orgID string, role domain.Role, teamID *string) *domain.User {
	t.Helper()
	u := &domain.User{
		Name:           string(role) + " user",
		Email:          string(role) + "-" + orgID + "@example.test",
		Role:           role,
		OrganizationID: orgID,
		TeamID:         teamID,
	}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func seedTeam(t *testing.T, store *testutil.Store, orgID, name string) *domain.Team {
	t.Helper()
	team := &domain.Team{Name: name, DisplayName: name, Slug: name, OrganizationID: orgID}
	require.NoError(t, store.Teams().Create(context.Background(), team))
	return team
}

// scriptedCodes hands out suffixes in order and then repeats the last one.
func scriptedCodes(suffixes ...string) CodeGenerator {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		s := suffixes[i]
		if i < len(suffixes)-1 {
			i++
		}
		return "TKT-" + s, nil
	}
}

type mockChatModel struct {
	mock.Mock
}

func (m *mockChatModel) Generate(ctx context.Context, prompt ai.Prompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

const testBcryptCost = bcrypt.MinCost

func strPtr(s string) *string { return &s }
