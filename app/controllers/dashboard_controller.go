package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
)

// HandleDashboard returns the signed-in user's eligibility and saved chapter sets.
func HandleDashboard(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return userError(c, err)
	}

	view, err := deps.Dashboard.Load(c.UserContext(), user)
	if err != nil {
		deps.Logger.Error().Err(err).Uint("user_id", user.ID).Msg("Failed to load dashboard")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to load dashboard"})
	}

	resp := fiber.Map{
		"user": fiber.Map{
			"name":      user.Name,
			"email":     user.Email,
			"avatarUrl": user.AvatarURL,
		},
		"dashboard": view,
	}
	if fm := flash.Get(c); len(fm) > 0 {
		resp["flash"] = fm
	}
	if token, ok := c.Locals("csrf").(string); ok {
		resp["csrfToken"] = token
	}
	if checkout := c.Query("checkout"); checkout != "" {
		resp["checkout"] = checkout
	}
	return c.JSON(resp)
}
