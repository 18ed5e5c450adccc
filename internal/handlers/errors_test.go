package handlers

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/services"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrNotFound, fiber.StatusNotFound},
		{services.ErrForbidden, fiber.StatusForbidden},
		{services.ErrNotApproved, fiber.StatusForbidden},
		{services.ErrHasDependentOrders, fiber.StatusConflict},
		{services.ErrEmailTaken, fiber.StatusConflict},
		{services.ErrInvalidClient, fiber.StatusUnprocessableEntity},
		{services.ErrInvalidProduct, fiber.StatusUnprocessableEntity},
		{services.ErrEmptyOrder, fiber.StatusUnprocessableEntity},
		{services.ErrInvalidInput, fiber.StatusBadRequest},
		{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{services.ErrTimeout, fiber.StatusGatewayTimeout},
		{services.ErrStoreUnavailable, fiber.StatusServiceUnavailable},
		{fmt.Errorf("hard delete client: %w", services.ErrHasDependentOrders), fiber.StatusConflict},
		{errors.New("something else"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestParseBodyValidates(t *testing.T) {
	type body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
	}

	tests := []struct {
		name    string
		payload string
		ok      bool
		message string
	}{
		{"valid", `{"email":"a@example.com","password":"password123"}`, true, ""},
		{"malformed json", `{"email":`, false, "Invalid request body"},
		{"bad email", `{"email":"nope","password":"password123"}`, false, "invalid input: Email is email"},
		{"short password", `{"email":"a@example.com","password":"short"}`, false, "invalid input: Password must satisfy min=8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var ok bool
			var message string
			app.Post("/", func(c *fiber.Ctx) error {
				var req body
				message, ok = parseBody(c, &req)
				return c.SendStatus(fiber.StatusNoContent)
			})

			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			_, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestWriteErrorReportsServerErrorsToSentry(t *testing.T) {
	var captured []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "http://public@localhost/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			captured = append(captured, event)
			return nil
		},
	})
	require.NoError(t, err)
	prev := sentry.CurrentHub().Client()
	sentry.CurrentHub().BindClient(client)
	t.Cleanup(func() { sentry.CurrentHub().BindClient(prev) })

	app := fiber.New()
	app.Use(sentryfiber.New(sentryfiber.Options{}))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return writeError(c, "test.boom", errors.New("connection reset"))
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return writeError(c, "test.missing", services.ErrNotFound)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Empty(t, captured)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	require.Len(t, captured, 1)
	require.NotEmpty(t, captured[0].Exception)
	assert.Equal(t, "connection reset", captured[0].Exception[len(captured[0].Exception)-1].Value)
}
