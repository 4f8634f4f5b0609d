package middleware

import (
	"strings"

	"github.com/ManuelReschke/ChapterFox/internal/pkg/session"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// UserContextMiddleware builds the request's user context from the session.
// Handlers read identity from there and never from shared state.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Goth keeps its own session store on /auth/*; skip ours there.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	store := session.GetSessionStore()
	if store == nil {
		usercontext.SetUserContext(c, usercontext.UserContext{})
		return c.Next()
	}
	sess, err := store.Get(c)
	if err != nil {
		usercontext.SetUserContext(c, usercontext.UserContext{})
		return c.Next()
	}

	userID, ok := sess.Get(usercontext.KeyUserID).(uint)
	email, _ := sess.Get(usercontext.KeyEmail).(string)
	if !ok || userID == 0 || email == "" {
		usercontext.SetUserContext(c, usercontext.UserContext{})
		return c.Next()
	}

	username, _ := sess.Get(usercontext.KeyUsername).(string)
	isAdmin, _ := sess.Get(usercontext.KeyIsAdmin).(bool)
	usercontext.SetUserContext(c, usercontext.UserContext{
		UserID:     userID,
		Username:   username,
		Email:      email,
		IsLoggedIn: true,
		IsAdmin:    isAdmin,
	})
	return c.Next()
}
