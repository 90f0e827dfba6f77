package middlewares

import (
	"saudagar/helpers"
	"saudagar/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole lets the request through only for the given caller roles.
// It must run after Protect.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		if !allowed[CallerRole(c)] {
			return helpers.JSONStatus(c, fiber.StatusForbidden, false, "FORBIDDEN", nil)
		}
		return c.Next()
	}
}
