package ledger

import (
	"saudagar/helpers"
	"saudagar/middlewares"
	"saudagar/services"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Settle(c *fiber.Ctx) error {
	var req services.SettleInput
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	req.CreatedBy = middlewares.CallerID(c)

	entry, err := h.ledger.SettleAgentDay(c.UserContext(), req)
	if err != nil {
		return helpers.Fail(c, err)
	}
	return helpers.JSONCreated(c, "Agent day settled", entry)
}
