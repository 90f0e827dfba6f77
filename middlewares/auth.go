package middlewares

import (
	"errors"
	"strings"

	"saudagar/helpers"
	"saudagar/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localUserID = "user_id"
	localRole   = "role"
)

// Claims are issued by the external login service.
type Claims struct {
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Protect verifies the bearer token and stores the caller in Locals.
func Protect(secret string) fiber.Handler {
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return helpers.JSONStatus(c, fiber.StatusUnauthorized, false, "AUTHORIZATION_REQUIRED", nil)
		}

		claims := &Claims{}
		_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
			if len(key) == 0 {
				return nil, errors.New("jwt secret not configured")
			}
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || claims.UserID == 0 {
			return helpers.JSONStatus(c, fiber.StatusUnauthorized, false, "INVALID_TOKEN", nil)
		}

		c.Locals(localUserID, claims.UserID)
		c.Locals(localRole, claims.Role)
		return c.Next()
	}
}

func CallerID(c *fiber.Ctx) uint {
	id, _ := c.Locals(localUserID).(uint)
	return id
}

func CallerRole(c *fiber.Ctx) models.Role {
	role, _ := c.Locals(localRole).(models.Role)
	return role
}

// SignToken issues an HS256 token for the caller. Used by tooling and tests;
// production tokens come from the login service.
func SignToken(secret string, userID uint, role models.Role, claims jwt.RegisteredClaims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           userID,
		Role:             role,
		RegisteredClaims: claims,
	})
	return t.SignedString([]byte(secret))
}
