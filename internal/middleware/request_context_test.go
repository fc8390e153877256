package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestRequestContextPropagatesCorrelationID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestContext(time.Second))
	app.Get("/", func(c *fiber.Ctx) error {
		_, hasDeadline := c.UserContext().Deadline()
		return c.JSON(fiber.Map{
			"local":    GetCorrelationID(c),
			"context":  CorrelationIDFromContext(c.UserContext()),
			"deadline": hasDeadline,
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "corr-1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "corr-1", resp.Header.Get("X-Correlation-ID"))

	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	require.Equal(t, "corr-1", body["local"])
	require.Equal(t, "corr-1", body["context"])
	require.Equal(t, true, body["deadline"])
}

func TestRequestContextGeneratesCorrelationID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestContext(0))
	app.Get("/", func(c *fiber.Ctx) error {
		_, hasDeadline := c.UserContext().Deadline()
		require.False(t, hasDeadline)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	require.Len(t, resp.Header.Get("X-Correlation-ID"), 36)
}
