package middleware

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/session"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired rejects callers whose profile is not an approved admin. The
// role is read from the store on every request, never from token claims, so
// a demoted admin loses access immediately.
func AdminRequired(gate *services.AccessGate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profileID, err := session.ProfileID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if _, err := gate.Admin(c.UserContext(), profileID); err != nil {
			switch {
			case errors.Is(err, services.ErrForbidden):
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Error: true, Message: "Admin access required",
				})
			case errors.Is(err, services.ErrTimeout):
				return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{
					Error: true, Message: err.Error(),
				})
			default:
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
					Error: true, Message: "Store unavailable, retry later",
				})
			}
		}
		return c.Next()
	}
}
