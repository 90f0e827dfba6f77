package result

import (
	"saudagar/helpers"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) History(c *fiber.Ctx) error {
	gameID, err := helpers.ParamID(c, "gameId")
	if err != nil {
		return helpers.Fail(c, err)
	}
	date, err := helpers.QueryDate(c, "date")
	if err != nil {
		return helpers.Fail(c, err)
	}

	results, err := h.results.ResultHistory(c.UserContext(), gameID, date, helpers.QueryInt(c, "limit", 30))
	if err != nil {
		return helpers.Fail(c, err)
	}
	return helpers.JSONSuccess(c, "Results fetched", results)
}
