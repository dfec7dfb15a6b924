package api

import (
	"github.com/gofiber/fiber/v3"

	"brandwatch/internal/models"
)

// Me returns the signed-in user.
func Me(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "not signed in")
	}
	return jsonSuccess(c, user)
}
