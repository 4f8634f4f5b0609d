package usercontext

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", func(c *fiber.Ctx) error {
		uc := GetUserContext(c)
		assert.False(t, uc.IsLoggedIn)
		assert.Empty(t, GetEmail(c))
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/user", func(c *fiber.Ctx) error {
		SetUserContext(c, UserContext{UserID: 4, Email: "ada@example.com", IsLoggedIn: true})
		assert.True(t, IsLoggedIn(c))
		assert.Equal(t, uint(4), GetUserID(c))
		assert.Equal(t, "ada@example.com", GetEmail(c))
		assert.Equal(t, true, c.Locals(KeyFromProtected))
		return c.SendStatus(fiber.StatusNoContent)
	})

	for _, path := range []string{"/anon", "/user"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}
