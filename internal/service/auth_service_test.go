package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/testutil"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func newAuthService(store *testutil.Store) *AuthService {
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: testBcryptCost}}
	return NewAuthService(cfg, AuthDependencies{
		OrganizationRepo: store.Organizations(),
		UserRepo:         store.Users(),
		TeamRepo:         store.Teams(),
	})
}

func acmeTenantInput() RegisterTenantInput {
	return RegisterTenantInput{
		OrganizationName: "Acme Café",
		DocumentType:     "cnpj",
		TaxID:            "11.222.333/0001-81",
		AdminName:        "Ana Admin",
		AdminEmail:       "Ana@Acme.test",
		AdminPassword:    "s3cret!",
	}
}

func TestRegisterTenant(t *testing.T) {
	store := testutil.NewStore()
	svc := newAuthService(store)

	res, err := svc.RegisterTenant(context.Background(), acmeTenantInput())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.User.Role)
	assert.Equal(t, "ana@acme.test", res.User.Email)
	assert.NotEqual(t, "s3cret!", res.User.PasswordHash)

	org, err := store.Organizations().GetByID(context.Background(), res.User.OrganizationID)
	require.NoError(t, err)
	assert.Equal(t, "acme-cafe", org.Slug)
	assert.Equal(t, "11222333000181", org.TaxID)
	assert.Equal(t, domain.DocumentTypeCNPJ, org.DocumentType)

	claims, err := svc.Tokens().ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)
	assert.Equal(t, org.ID, claims.OrganizationID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestRegisterTenantValidation(t *testing.T) {
	store := testutil.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	in := acmeTenantInput()
	in.TaxID = "1234"
	_, err := svc.RegisterTenant(ctx, in)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	in = acmeTenantInput()
	in.DocumentType = "CPF"
	_, err = svc.RegisterTenant(ctx, in)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	in = acmeTenantInput()
	in.Slug = "Not A Slug"
	_, err = svc.RegisterTenant(ctx, in)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	in = acmeTenantInput()
	in.OrganizationName = "🔥 Acme"
	_, err = svc.RegisterTenant(ctx, in)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestRegisterTenantConflicts(t *testing.T) {
	store := testutil.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	_, err := svc.RegisterTenant(ctx, acmeTenantInput())
	require.NoError(t, err)

	in := acmeTenantInput()
	in.TaxID = "99888777000166"
	in.AdminEmail = "other@acme.test"
	_, err = svc.RegisterTenant(ctx, in)
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, 409, de.HTTPStatus)
	assert.Contains(t, de.Message, "slug")

	in = acmeTenantInput()
	in.Slug = "acme-two"
	in.TaxID = "99888777000166"
	_, err = svc.RegisterTenant(ctx, in)
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Message, "email")
}

func TestLogin(t *testing.T) {
	store := testutil.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	registered, err := svc.RegisterTenant(ctx, acmeTenantInput())
	require.NoError(t, err)

	res, err := svc.Login(ctx, "ana@acme.test", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Login(ctx, "ana@acme.test", "wrong")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Login(ctx, "nobody@acme.test", "s3cret!")
	require.Error(t, err)
	assert.Equal(t, invalidCredentials, apperrors.ToDomainError(err).Message)
}

func TestRegisterUser(t *testing.T) {
	store := testutil.NewStore()
	svc := newAuthService(store)
	ctx := context.Background()

	admin, err := svc.RegisterTenant(ctx, acmeTenantInput())
	require.NoError(t, err)
	team := seedTeam(t, store, admin.User.OrganizationID, "support")
	other := seedTenant(t, store, "other", "99888777000166")
	foreignTeam := seedTeam(t, store, other.org.ID, "ops")

	res, err := svc.RegisterUser(ctx, admin.User, RegisterUserInput{
		Name:     "Bruno Agent",
		Email:    "bruno@acme.test",
		Password: "pw",
		Role:     "ROLE_AGENT",
		TeamID:   &team.ID,
		Document: strPtr("123.456.789-09"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, res.User.Role)
	assert.Equal(t, admin.User.OrganizationID, res.User.OrganizationID)
	assert.Equal(t, team.ID, *res.User.TeamID)
	assert.Equal(t, "12345678909", *res.User.Document)
	assert.Equal(t, domain.DocumentTypeCPF, *res.User.DocumentType)

	tokens := auth.NewTokenManager("test-secret", 60)
	claims, err := tokens.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)

	_, err = svc.RegisterUser(ctx, res.User, RegisterUserInput{Name: "X", Email: "x@acme.test", Password: "pw", Role: "CUSTOMER"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = svc.RegisterUser(ctx, admin.User, RegisterUserInput{Name: "Y", Email: "y@acme.test", Password: "pw", Role: "AGENT", TeamID: &foreignTeam.ID})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	_, err = svc.RegisterUser(ctx, admin.User, RegisterUserInput{Name: "Z", Email: "z@acme.test", Password: "pw", Role: "AGENT", Document: strPtr("123")})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.RegisterUser(ctx, admin.User, RegisterUserInput{Name: "W", Email: "w@acme.test", Password: "pw", Role: "OWNER"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}
