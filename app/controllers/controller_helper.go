package controllers

import (
	"errors"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/generation"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/quota"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var errNotSignedIn = errors.New("not signed in")

// Identity returns the caller as established by the session.
func Identity(c *fiber.Ctx) quota.Identity {
	return quota.Identity{Email: usercontext.GetEmail(c)}
}

// currentUser loads the signed-in user. gorm.ErrRecordNotFound is returned
// when the session outlived the account.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	id := Identity(c)
	if !id.Present() {
		return nil, errNotSignedIn
	}
	return deps.Users.GetByEmail(c.UserContext(), id.Email)
}

// userError writes the JSON response for a failed currentUser call.
func userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errNotSignedIn):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": quota.MsgAuthenticationRequired})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": quota.MsgUserNotFound})
	default:
		deps.Logger.Error().Err(err).Msg("Failed to load current user")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

// StatusFor maps a generation result to its HTTP status.
func StatusFor(res generation.Result) int {
	if res.Success {
		return fiber.StatusCreated
	}
	switch res.Kind {
	case generation.KindAuthenticationRequired:
		return fiber.StatusUnauthorized
	case generation.KindNotFound:
		return fiber.StatusNotFound
	case generation.KindValidation:
		return fiber.StatusUnprocessableEntity
	case generation.KindQuotaExceeded:
		return fiber.StatusTooManyRequests
	case generation.KindUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
