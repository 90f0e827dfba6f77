package game

import (
	"saudagar/helpers"
	"saudagar/middlewares"
	"saudagar/models"
	"saudagar/services"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Create(c *fiber.Ctx) error {
	var req services.GameInput
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	req.CreatedBy = middlewares.CallerID(c)

	g, err := h.games.AddGame(c.UserContext(), req)
	if err != nil {
		return helpers.Fail(c, err)
	}
	return helpers.JSONCreated(c, "Game added", g)
}

// List returns active games. Admins may pass all=true to include inactive ones.
func (h *Handler) List(c *fiber.Ctx) error {
	all := c.QueryBool("all") && middlewares.CallerRole(c) == models.RoleAdmin

	games, err := h.games.ListGames(c.UserContext(), all)
	if err != nil {
		return helpers.Fail(c, err)
	}
	return helpers.JSONSuccess(c, "Games fetched", games)
}
