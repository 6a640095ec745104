package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func parsePageRequest(c *fiber.Ctx) service.PageRequest {
	return service.PageRequest{
		Page: parseInt(c.Query("page"), 1),
		Size: parseInt(c.Query("size"), 0),
		Sort: c.Query("sort"),
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// parseID reads the :id path parameter and returns it in canonical form.
func parseID(c *fiber.Ctx) (string, error) {
	return canonicalID("id", c.Params("id"))
}

func canonicalID(field, raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.NewValidationError("invalid "+field+": must be a UUID", map[string]any{"field": field})
	}
	return id.String(), nil
}

// optionalID canonicalizes a nullable id from a request body. Blank stays as is
// so the service can apply its own defaults.
func optionalID(field string, raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return raw, nil
	}
	id, err := canonicalID(field, *raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// optionalIDUpdate is optionalID for partial-update fields; null still clears.
func optionalIDUpdate(field string, o domain.Optional[string]) (domain.Optional[string], error) {
	if !o.Set || o.Value == nil {
		return o, nil
	}
	id, err := canonicalID(field, *o.Value)
	if err != nil {
		return o, err
	}
	return domain.Some(id), nil
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}
