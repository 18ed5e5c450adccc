package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/clients/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})
	app.Get("/metrics", Handler())

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/api/clients/:id", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b"} {
		_, err := app.Test(httptest.NewRequest("GET", "/api/clients/"+id, nil))
		require.NoError(t, err)
	}
	assert.Equal(t, before+2, testutil.ToFloat64(counter))

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "orderdesk_http_requests_total")
}

func TestRecordFailure(t *testing.T) {
	counter := LifecycleFailures.WithLabelValues("client.hard_delete", "409")
	before := testutil.ToFloat64(counter)
	RecordFailure("client.hard_delete", fiber.StatusConflict)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
