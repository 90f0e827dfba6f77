package ledger

import (
	"saudagar/helpers"
	"saudagar/middlewares"
	"saudagar/models"
	"saudagar/services"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	ledger *services.LedgerService
}

func New(ledger *services.LedgerService) *Handler {
	return &Handler{ledger: ledger}
}

// agentParams reads :agentId and :gameId. Agents may only read their own
// khatabook.
func agentParams(c *fiber.Ctx) (uint, uint, error) {
	agentID, err := helpers.ParamID(c, "agentId")
	if err != nil {
		return 0, 0, err
	}
	gameID, err := helpers.ParamID(c, "gameId")
	if err != nil {
		return 0, 0, err
	}
	if middlewares.CallerRole(c) != models.RoleAdmin && agentID != middlewares.CallerID(c) {
		return 0, 0, &services.NotFoundError{Resource: "agent", Key: agentID}
	}
	return agentID, gameID, nil
}
