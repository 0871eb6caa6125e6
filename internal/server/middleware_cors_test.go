package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"postboard/internal/config"
	"postboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontendOrigin = "http://localhost:5173"

func limitedApp(t *testing.T) *fiber.App {
	t.Helper()
	srv := &Server{config: &config.Config{AllowedOrigins: frontendOrigin}}
	app := fiber.New()
	srv.SetupMiddleware(app)
	app.All("/limited", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// The global limiter allows 100 requests per visitor per minute.
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodPost, "/limited", nil)
		req.Header.Set(fiber.HeaderOrigin, frontendOrigin)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}
	return app
}

func TestGlobalLimiter_KeepsCORSHeadersOnRejection(t *testing.T) {
	app := limitedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.Header.Set(fiber.HeaderOrigin, frontendOrigin)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, frontendOrigin, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "RATE_LIMITED", body.Code)
}

func TestGlobalLimiter_PreflightIsNeverLimited(t *testing.T) {
	app := limitedApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/limited", nil)
	req.Header.Set(fiber.HeaderOrigin, frontendOrigin)
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)
	req.Header.Set(fiber.HeaderAccessControlRequestHeaders, "authorization,content-type")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, frontendOrigin, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), http.MethodPost)
}
