package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/ChapterFox/internal/pkg/usercontext"
)

func TestGenerateLimiterIsPerUser(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-User") == "2" {
			usercontext.SetUserContext(c, usercontext.UserContext{UserID: 2, IsLoggedIn: true})
		} else {
			usercontext.SetUserContext(c, usercontext.UserContext{UserID: 1, IsLoggedIn: true})
		}
		return c.Next()
	})
	app.Post("/generate", generateLimiter(2), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	app.Get("/generate", generateLimiter(2), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	post := func(user string) int {
		req := httptest.NewRequest(http.MethodPost, "/generate", nil)
		req.Header.Set("X-User", user)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusCreated, post("1"))
	assert.Equal(t, fiber.StatusCreated, post("1"))
	assert.Equal(t, fiber.StatusTooManyRequests, post("1"))
	assert.Equal(t, fiber.StatusCreated, post("2"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/generate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
