package ledger

import (
	"saudagar/helpers"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Compute(c *fiber.Ctx) error {
	agentID, gameID, err := agentParams(c)
	if err != nil {
		return helpers.Fail(c, err)
	}
	date, err := helpers.QueryDate(c, "date")
	if err != nil {
		return helpers.Fail(c, err)
	}

	out, err := h.ledger.ComputeAgentLedger(c.UserContext(), agentID, gameID, date)
	if err != nil {
		return helpers.Fail(c, err)
	}
	return helpers.JSONSuccess(c, "Ledger computed", out)
}

func (h *Handler) History(c *fiber.Ctx) error {
	agentID, gameID, err := agentParams(c)
	if err != nil {
		return helpers.Fail(c, err)
	}

	entries, err := h.ledger.LedgerHistory(c.UserContext(), agentID, gameID, helpers.QueryInt(c, "limit", 30))
	if err != nil {
		return helpers.Fail(c, err)
	}
	return helpers.JSONSuccess(c, "Ledger history fetched", entries)
}
