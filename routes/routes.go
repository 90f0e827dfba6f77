package routes

import (
	"saudagar/controllers/bid"
	"saudagar/controllers/game"
	"saudagar/controllers/health"
	"saudagar/controllers/ledger"
	"saudagar/controllers/result"
	"saudagar/middlewares"
	"saudagar/models"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Games   *game.Handler
	Results *result.Handler
	Bids    *bid.Handler
	Ledger  *ledger.Handler
	Health  *health.Handler
}

func Setup(app *fiber.App, h Handlers, jwtSecret string) {
	app.Get("/health", h.Health.Check)

	api := app.Group("/api", middlewares.Protect(jwtSecret))
	admin := middlewares.RequireRole(models.RoleAdmin)
	staff := middlewares.RequireRole(models.RoleAdmin, models.RoleAgent)

	//games
	games := api.Group("/games")
	games.Post("/", admin, h.Games.Create)
	games.Get("/", h.Games.List)

	//results
	results := api.Group("/results")
	results.Post("/declare", admin, h.Results.Declare)
	results.Get("/:gameId", h.Results.History)

	//bids
	bids := api.Group("/bids")
	bids.Post("/place", staff, h.Bids.Place)
	bids.Post("/fetch", h.Bids.Fetch)
	bids.Get("/types", h.Bids.Types)
	bids.Get("/rates/:gameId", h.Bids.Rates)
	bids.Put("/rates/:gameId/:bidTypeId", admin, h.Bids.UpdateRate)

	api.Get("/receipts/:id", staff, h.Bids.Receipt)

	//khatabook
	khata := api.Group("/ledger", staff)
	khata.Post("/settle", admin, h.Ledger.Settle)
	khata.Get("/:agentId/:gameId", h.Ledger.Compute)
	khata.Get("/:agentId/:gameId/history", h.Ledger.History)
}
