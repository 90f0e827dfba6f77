package bid

import (
	"saudagar/helpers"
	"saudagar/middlewares"
	"saudagar/models"
	"saudagar/services"

	"github.com/gofiber/fiber/v2"
)

type FetchBidsRequest struct {
	Filters    services.BidFilter  `json:"filters"`
	Pagination services.Pagination `json:"pagination"`
}

func (h *Handler) Fetch(c *fiber.Ctx) error {
	var req FetchBidsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helpers.JSONError(c, "INVALID_JSON")
		}
	}

	switch middlewares.CallerRole(c) {
	case models.RoleAgent:
		req.Filters.AgentID = middlewares.CallerID(c)
	case models.RoleUser:
		req.Filters.UserID = middlewares.CallerID(c)
	}

	page, err := h.bids.FetchBids(c.UserContext(), req.Filters, req.Pagination)
	if err != nil {
		return helpers.Fail(c, err)
	}
	return helpers.JSONSuccess(c, "Bids fetched", page)
}

func (h *Handler) Receipt(c *fiber.Ctx) error {
	receipt, err := h.bids.GetReceipt(c.UserContext(), c.Params("id"))
	if err != nil {
		return helpers.Fail(c, err)
	}
	if middlewares.CallerRole(c) == models.RoleAgent && receipt.AgentID != middlewares.CallerID(c) {
		return helpers.Fail(c, &services.NotFoundError{Resource: "receipt", Key: receipt.ID})
	}
	return helpers.JSONSuccess(c, "Receipt fetched", receipt)
}
