package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/abilitylink/jobboard_be/internal/models"
)

// getAuth reads the authenticated user id set by AttachJWTLocals.
func getAuth(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Locals("userId")
	if raw == nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return id, nil
}

func isAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals("role").(string)
	return role == string(models.RoleAdmin)
}

// canActFor allows self-or-admin access on /:userId scoped routes.
func canActFor(c *fiber.Ctx, target uuid.UUID) bool {
	caller, err := getAuth(c)
	if err != nil {
		return false
	}
	return caller == target || isAdmin(c)
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}
