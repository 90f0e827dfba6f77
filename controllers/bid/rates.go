package bid

import (
	"saudagar/helpers"
	"saudagar/models"
	"saudagar/services"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Types(c *fiber.Ctx) error {
	types, err := h.bids.ListBidTypes(c.UserContext())
	if err != nil {
		return helpers.Fail(c, err)
	}
	return helpers.JSONSuccess(c, "Bid types fetched", types)
}

func (h *Handler) Rates(c *fiber.Ctx) error {
	gameID, err := helpers.ParamID(c, "gameId")
	if err != nil {
		return helpers.Fail(c, err)
	}

	rates, err := h.bids.ListBidRates(c.UserContext(), gameID)
	if err != nil {
		return helpers.Fail(c, err)
	}
	return helpers.JSONSuccess(c, "Bid rates fetched", rates)
}

func (h *Handler) UpdateRate(c *fiber.Ctx) error {
	gameID, err := helpers.ParamID(c, "gameId")
	if err != nil {
		return helpers.Fail(c, err)
	}
	bidType, ok := models.ParseBidType(c.Params("bidTypeId"))
	if !ok {
		return helpers.Fail(c, &services.ValidationError{Field: "bidTypeId", Message: "unknown bid type"})
	}

	var req services.RateUpdate
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	rate, err := h.bids.UpdateBidRate(c.UserContext(), gameID, bidType, req)
	if err != nil {
		return helpers.Fail(c, err)
	}
	return helpers.JSONSuccess(c, "Bid rate updated", rate)
}
