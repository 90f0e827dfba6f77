package helpers

import (
	"errors"

	"saudagar/services"

	"github.com/gofiber/fiber/v2"
)

func JSONSuccess(c *fiber.Ctx, message string, data any) error {
	return JSONStatus(c, fiber.StatusOK, true, message, data)
}

func JSONCreated(c *fiber.Ctx, message string, data any) error {
	return JSONStatus(c, fiber.StatusCreated, true, message, data)
}

func JSONError(c *fiber.Ctx, message string) error {
	return JSONStatus(c, fiber.StatusBadRequest, false, message, nil)
}

func JSONStatus(c *fiber.Ctx, status int, success bool, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": success,
		"message": message,
		"data":    data,
	})
}

// Fail writes err with the status of its service error class. Storage
// failures are reported without their cause.
func Fail(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	var nf *services.NotFoundError
	switch {
	case errors.As(err, &ve):
		return JSONStatus(c, fiber.StatusBadRequest, false, ve.Error(), nil)
	case errors.As(err, &nf):
		return JSONStatus(c, fiber.StatusNotFound, false, nf.Error(), nil)
	}
	return JSONStatus(c, fiber.StatusInternalServerError, false, "INTERNAL_ERROR", nil)
}
