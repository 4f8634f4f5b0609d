package router

import (
	"github.com/ManuelReschke/ChapterFox/app/controllers"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/constants"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// API routes live in ApiRouter (internal/pkg/router/api_router.go)
	app.Get(constants.RouteHome, controllers.HandleIndex)

	// Auth
	app.Post(constants.RouteLogout, middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Stripe webhooks (no CSRF, signature-verified in the billing service)
	app.Post(constants.RouteStripeWebhook, controllers.HandleStripeWebhook)
}
