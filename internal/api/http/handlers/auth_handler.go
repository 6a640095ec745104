package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/service"
)

// AuthHandler exposes tenant registration, login and user provisioning.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// RegisterTenant handles POST /auth/register-tenant.
func (h *AuthHandler) RegisterTenant(c *fiber.Ctx) error {
	var req dto.RegisterTenantRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.auth.RegisterTenant(c.UserContext(), service.RegisterTenantInput{
		OrganizationName: req.Name,
		Slug:             req.Slug,
		DocumentType:     req.DocumentType,
		TaxID:            req.TaxID,
		AdminName:        req.AdminName,
		AdminEmail:       req.AdminEmail,
		AdminPassword:    req.AdminPassword,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAuthResponse(res)})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuthResponse(res)})
}

// RegisterUser handles POST /auth/register-user and POST /users.
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.RegisterUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	teamID, err := optionalID("teamId", req.TeamID)
	if err != nil {
		return err
	}
	res, err := h.auth.RegisterUser(c.UserContext(), actor, service.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		TeamID:   teamID,
		Document: req.Document,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAuthResponse(res)})
}
