package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/services"
	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/session"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps the lifecycle taxonomy onto HTTP status codes. Anything
// unclassified is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrNotApproved):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrHasDependentOrders), errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrInvalidClient), errors.Is(err, services.ErrInvalidProduct),
		errors.Is(err, services.ErrEmptyOrder):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, services.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// writeError renders err as dto.ErrorResponse. 5xx details stay in the logs
// and Sentry; the response carries a generic message.
func writeError(c *fiber.Ctx, op string, err error) error {
	code := statusFor(err)
	message := err.Error()
	metrics.RecordFailure(op, code)
	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"op", op,
			"request_id", session.RequestID(c),
			"path", c.Path(),
			"status", code,
			"error", err,
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		switch code {
		case fiber.StatusGatewayTimeout:
			message = services.ErrTimeout.Error()
		case fiber.StatusServiceUnavailable:
			message = services.ErrStoreUnavailable.Error()
		default:
			message = "Internal server error"
		}
	}
	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: "Unauthorized"})
}
