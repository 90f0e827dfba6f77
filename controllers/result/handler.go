package result

import "saudagar/services"

type Handler struct {
	results *services.ResultService
}

func New(results *services.ResultService) *Handler {
	return &Handler{results: results}
}
