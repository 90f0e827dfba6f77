package bid

import (
	"saudagar/helpers"
	"saudagar/middlewares"
	"saudagar/models"
	"saudagar/services"

	"github.com/gofiber/fiber/v2"
)

type PlaceBidsRequest struct {
	Receipt services.ReceiptInput `json:"receipt"`
	Bids    []services.BidInput   `json:"bids"`
}

// Place books a receipt. Agents always book under their own id; admins may
// book for any agent. Only staff reach this handler.
func (h *Handler) Place(c *fiber.Ctx) error {
	var req PlaceBidsRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}

	caller := middlewares.CallerID(c)
	role := middlewares.CallerRole(c)
	if role != models.RoleAdmin || req.Receipt.AgentID == 0 {
		req.Receipt.AgentID = caller
	}
	for i := range req.Bids {
		if req.Bids[i].UserID == 0 {
			req.Bids[i].UserID = caller
		}
	}

	out, err := h.bids.PlaceBids(c.UserContext(), req.Receipt, req.Bids)
	if err != nil {
		return helpers.Fail(c, err)
	}
	return helpers.JSONCreated(c, "Bids placed", out)
}
