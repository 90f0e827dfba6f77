package health

import (
	"context"
	"time"

	"saudagar/cache"
	"saudagar/helpers"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Handler struct {
	db    *gorm.DB
	cache cache.Cache
}

func New(db *gorm.DB, c cache.Cache) *Handler {
	return &Handler{db: db, cache: c}
}

func (h *Handler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.Map{"database": "ok", "cache": "ok"}
	healthy := true

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status["database"] = "down"
		healthy = false
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			status["cache"] = "down"
			healthy = false
		}
	}

	if !healthy {
		return helpers.JSONStatus(c, fiber.StatusServiceUnavailable, false, "UNHEALTHY", status)
	}
	return helpers.JSONSuccess(c, "OK", status)
}
