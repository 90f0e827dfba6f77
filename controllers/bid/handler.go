package bid

import "saudagar/services"

type Handler struct {
	bids *services.BidService
}

func New(bids *services.BidService) *Handler {
	return &Handler{bids: bids}
}
