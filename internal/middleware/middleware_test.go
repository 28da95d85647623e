package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionLimiter(t *testing.T) {
	l := NewConnectionLimiter(1)
	assert.True(t, l.Acquire())
	assert.False(t, l.Acquire())
	l.Release()
	assert.True(t, l.Acquire())
	l.Release()
	l.Release() // extra releases are ignored
	assert.True(t, l.Acquire())
}

func TestPanicRecovery(t *testing.T) {
	app := fiber.New()
	app.Use(panicRecoveryMiddleware())
	app.Get("/boom", func(c fiber.Ctx) error { panic("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestLimiterRejectsWhenFull(t *testing.T) {
	limiter := NewConnectionLimiter(1)
	require.True(t, limiter.Acquire())

	app := fiber.New()
	app.Use(connectionLimiterMiddleware(limiter))
	app.Get("/", func(c fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestRegisterAddsCORS(t *testing.T) {
	app := fiber.New()
	Register(app)
	app.Get("/", func(c fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
