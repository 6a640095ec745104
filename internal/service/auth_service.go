package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/validation"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

const invalidCredentials = "invalid email or password"

// AuthService coordinates tenant registration, login and user provisioning.
type AuthService struct {
	orgs       repository.OrganizationRepository
	users      repository.UserRepository
	teams      repository.TeamRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	OrganizationRepo repository.OrganizationRepository
	UserRepo         repository.UserRepository
	TeamRepo         repository.TeamRepository
	TokenManager     *auth.TokenManager
}

// AuthResult is the issued credential together with the user it belongs to.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// RegisterTenantInput carries the organization and its first admin.
type RegisterTenantInput struct {
	OrganizationName string
	Slug             string
	DocumentType     string
	TaxID            string
	AdminName        string
	AdminEmail       string
	AdminPassword    string
}

// RegisterUserInput describes a user provisioned by an admin.
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	TeamID   *string
	Document *string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.TokenManager
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	return &AuthService{
		orgs:       deps.OrganizationRepo,
		users:      deps.UserRepo,
		teams:      deps.TeamRepo,
		tokenMgr:   tokens,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Tokens exposes the token manager for the bearer middleware.
func (s *AuthService) Tokens() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterTenant creates an organization and its ADMIN user atomically.
func (s *AuthService) RegisterTenant(ctx context.Context, in RegisterTenantInput) (*AuthResult, error) {
	docType := domain.DocumentType(strings.ToUpper(strings.TrimSpace(in.DocumentType)))
	taxID := validation.DigitsOnly(in.TaxID)
	if err := validation.ValidateTaxID(docType, taxID); err != nil {
		return nil, err
	}

	name := validation.NormalizeText(in.OrganizationName)
	if name == "" {
		return nil, apperrors.NewValidationError("organization name is required", map[string]any{"field": "name"})
	}
	if err := validation.ValidateString(name, "name", validation.StrictName, true); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = validation.ToSlug(name)
	} else if err := validation.ValidateString(slug, "slug", validation.Slug, false); err != nil {
		return nil, err
	}

	admin, err := s.newUser(in.AdminName, in.AdminEmail, in.AdminPassword)
	if err != nil {
		return nil, err
	}
	admin.Role = domain.RoleAdmin

	org := &domain.Organization{
		Name:         name,
		Slug:         slug,
		DocumentType: docType,
		TaxID:        taxID,
	}
	if err := s.orgs.CreateWithAdmin(ctx, org, admin); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.issue(admin)
}

// Login verifies the password and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewUnauthorized(invalidCredentials)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized(invalidCredentials)
	}
	return s.issue(user)
}

// RegisterUser provisions a user inside the caller's organization and returns a
// token for the new user, not for the caller.
func (s *AuthService) RegisterUser(ctx context.Context, actor *domain.User, in RegisterUserInput) (*AuthResult, error) {
	if err := auth.EnsureRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}

	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return nil, apperrors.NewValidationError("invalid role: "+in.Role, map[string]any{"field": "role"})
	}

	user, err := s.newUser(in.Name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	user.Role = role
	user.OrganizationID = actor.OrganizationID

	if in.TeamID != nil && strings.TrimSpace(*in.TeamID) != "" {
		teamID := strings.TrimSpace(*in.TeamID)
		if err := s.ensureTeam(ctx, actor, teamID); err != nil {
			return nil, err
		}
		user.TeamID = &teamID
	}
	if in.Document != nil && strings.TrimSpace(*in.Document) != "" {
		docType, digits, err := validation.ClassifyDocument(*in.Document)
		if err != nil {
			return nil, err
		}
		user.Document = &digits
		user.DocumentType = &docType
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.issue(user)
}

func (s *AuthService) ensureTeam(ctx context.Context, actor *domain.User, teamID string) error {
	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("team", map[string]any{"id": teamID})
		}
		return err
	}
	return auth.EnsureSameTenant(actor, team.OrganizationID)
}

func (s *AuthService) newUser(name, email, password string) (*domain.User, error) {
	name = validation.NormalizeText(name)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case name == "":
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	case email == "" || !strings.Contains(email, "@"):
		return nil, apperrors.NewValidationError("a valid email is required", map[string]any{"field": "email"})
	case password == "":
		return nil, apperrors.NewValidationError("password is required", map[string]any{"field": "password"})
	}
	if err := validation.ValidateString(name, "name", validation.StrictName, true); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &domain.User{Name: name, Email: email, PasswordHash: hash}, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}
