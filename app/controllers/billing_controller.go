package controllers

import (
	"errors"

	"github.com/ManuelReschke/ChapterFox/internal/pkg/billing"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/constants"
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
)

// HandleBillingCheckout redirects to a Stripe checkout for the premium plan.
func HandleBillingCheckout(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Please sign in again"}).Redirect(constants.RouteHome)
	}

	url, err := deps.Billing.CheckoutURL(c.UserContext(), user)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": billingErrorMessage(err, "Checkout could not be started")}).
			Redirect(constants.RouteDashboard)
	}
	return c.Redirect(url, fiber.StatusSeeOther)
}

// HandleBillingPortal redirects to the Stripe customer portal.
func HandleBillingPortal(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Please sign in again"}).Redirect(constants.RouteHome)
	}

	url, err := deps.Billing.PortalURL(c.UserContext(), user)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": billingErrorMessage(err, "Billing portal could not be opened")}).
			Redirect(constants.RouteDashboard)
	}
	return c.Redirect(url, fiber.StatusSeeOther)
}

// HandleStripeWebhook verifies and processes a Stripe event. Failures other
// than a bad signature answer 500 so Stripe redelivers.
func HandleStripeWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	outcome, err := deps.Billing.HandleStripeWebhook(c.UserContext(), payload, c.Get("Stripe-Signature"))
	if errors.Is(err, billing.ErrInvalidSignature) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid signature"})
	}
	if err != nil {
		deps.Logger.Error().Err(err).Msg("Stripe webhook processing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing failed"})
	}

	return c.JSON(fiber.Map{
		"received":  true,
		"duplicate": outcome.Duplicate,
		"ignored":   outcome.Ignored,
	})
}

func billingErrorMessage(err error, fallback string) string {
	if errors.Is(err, billing.ErrBillingDisabled) {
		return "Billing is not available right now"
	}
	return fallback
}
