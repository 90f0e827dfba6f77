package result

import (
	"saudagar/helpers"
	"saudagar/middlewares"
	"saudagar/services"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Declare(c *fiber.Ctx) error {
	var req services.DeclareInput
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	req.DeclaredBy = middlewares.CallerID(c)

	out, err := h.results.DeclareResult(c.UserContext(), req)
	if err != nil {
		return helpers.Fail(c, err)
	}

	message := "Result declared"
	if out.Report.Failed() > 0 {
		message = "Result declared, some settlement steps failed"
	}
	return helpers.JSONCreated(c, message, out)
}
