package controllers

import (
	"sort"

	"github.com/ManuelReschke/ChapterFox/internal/pkg/constants"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/session"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"github.com/markbates/goth"
	"github.com/sujit-baniya/flash"
)

// HandleIndex describes the service and how to sign in.
func HandleIndex(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)

	names := make([]string, 0)
	for name := range goth.GetProviders() {
		names = append(names, name)
	}
	sort.Strings(names)
	logins := make([]string, 0, len(names))
	for _, name := range names {
		logins = append(logins, "/auth/"+name)
	}

	resp := fiber.Map{
		"name":     "ChapterFox",
		"loggedIn": uc.IsLoggedIn,
		"login":    logins,
	}
	if uc.IsLoggedIn {
		resp["dashboard"] = constants.RouteDashboard
	}
	if fm := flash.Get(c); len(fm) > 0 {
		resp["flash"] = fm
	}
	return c.JSON(resp)
}

// HandleAuthLogout destroys the session.
func HandleAuthLogout(c *fiber.Ctx) error {
	store := session.GetSessionStore()
	if store != nil {
		if sess, err := store.Get(c); err == nil {
			if err := sess.Destroy(); err != nil {
				deps.Logger.Warn().Err(err).Msg("Failed to destroy session")
			}
		}
	}
	return c.Redirect(constants.RouteHome, fiber.StatusSeeOther)
}
