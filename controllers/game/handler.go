package game

import "saudagar/services"

type Handler struct {
	games *services.GameService
}

func New(games *services.GameService) *Handler {
	return &Handler{games: games}
}
