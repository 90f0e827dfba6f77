package helpers

import (
	"strconv"

	"saudagar/models"
	"saudagar/services"

	"github.com/gofiber/fiber/v2"
)

// ParamID reads a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || n == 0 {
		return 0, &services.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return uint(n), nil
}

func QueryInt(c *fiber.Ctx, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return n
}

// QueryDate returns the date query parameter, empty when absent.
func QueryDate(c *fiber.Ctx, name string) (string, error) {
	d := c.Query(name)
	if d != "" && !models.ValidDate(d) {
		return "", &services.ValidationError{Field: name, Message: "must be a YYYY-MM-DD date"}
	}
	return d, nil
}
