package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ChapterFox/app/models"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/constants"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/session"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/usercontext"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/utils"
)

var (
	errNoEmail      = errors.New("provider did not return an email address")
	errUserDisabled = errors.New("account is disabled")
)

// HandleOAuthCallback completes the provider flow and logs the user in
func HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("OAuth failed: %v", err)})
	}

	appUser, err := signInSocialUser(c.UserContext(), u)
	switch {
	case errors.Is(err, errNoEmail):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, errUserDisabled):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		deps.Logger.Error().Err(err).Str("provider", u.Provider).Msg("Social sign-in failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "sign-in failed"})
	}

	if err := startSession(c, appUser); err != nil {
		deps.Logger.Error().Err(err).Uint("user_id", appUser.ID).Msg("Failed to start session")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "session init failed"})
	}

	return c.Redirect(constants.RouteDashboard, fiber.StatusSeeOther)
}

// signInSocialUser resolves the provider identity to a user, creating the user
// by email on first sign-in and linking the provider account.
func signInSocialUser(ctx context.Context, u goth.User) (*models.User, error) {
	var appUser *models.User

	pa, err := deps.ProviderAccounts.GetByProviderUser(ctx, u.Provider, u.UserID)
	switch {
	case err == nil:
		appUser, err = deps.Users.GetByID(ctx, pa.UserID)
		if err != nil {
			return nil, fmt.Errorf("load linked user %d: %w", pa.UserID, err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" {
			return nil, errNoEmail
		}
		appUser, err = findOrCreateUser(ctx, email, firstNonEmpty(u.Name, u.NickName), utils.AvatarURL(u.AvatarURL, email, 200))
		if err != nil {
			return nil, err
		}
		if err := deps.ProviderAccounts.Link(ctx, &models.ProviderAccount{
			UserID:         appUser.ID,
			Provider:       u.Provider,
			ProviderUserID: u.UserID,
		}); err != nil {
			return nil, fmt.Errorf("link provider %s: %w", u.Provider, err)
		}
	default:
		return nil, fmt.Errorf("lookup provider account: %w", err)
	}

	if !appUser.IsActive() {
		return nil, errUserDisabled
	}
	if err := deps.Users.TouchLastLogin(ctx, appUser.ID); err != nil {
		deps.Logger.Warn().Err(err).Uint("user_id", appUser.ID).Msg("Failed to update last login")
	}
	return appUser, nil
}

func findOrCreateUser(ctx context.Context, email, name, avatarURL string) (*models.User, error) {
	existing, err := deps.Users.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	created, err := models.NewSocialUser(name, email, avatarURL)
	if err != nil {
		return nil, fmt.Errorf("invalid social user: %w", err)
	}
	if err := deps.Users.Create(ctx, created); err != nil {
		// a concurrent first sign-in may have created the row
		if again, gerr := deps.Users.GetByEmail(ctx, email); gerr == nil {
			return again, nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	deps.Logger.Info().Uint("user_id", created.ID).Msg("Created user on first sign-in")
	return created, nil
}

func startSession(c *fiber.Ctx, u *models.User) error {
	store := session.GetSessionStore()
	if store == nil {
		return errors.New("session store not initialized")
	}
	sess, err := store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, u.ID)
	sess.Set(usercontext.KeyEmail, u.Email)
	sess.Set(usercontext.KeyUsername, u.Name)
	sess.Set(usercontext.KeyIsAdmin, u.Role == models.ROLE_ADMIN)
	return sess.Save()
}
