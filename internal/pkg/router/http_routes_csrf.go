package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/ManuelReschke/ChapterFox/app/controllers"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/constants"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/middleware"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !h.cfg.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/") || c.Path() == constants.RouteStripeWebhook
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get(constants.RouteDashboard, middleware.RequireAuth, controllers.HandleDashboard)
	group.Post(constants.RouteGenerate, middleware.RequireAuth, generateLimiter(h.cfg.GenerateRateLimit), controllers.HandleGenerateChapters)
	group.Get(constants.RouteChapterSet, middleware.RequireAuth, controllers.HandleChapterSet)

	// Billing
	group.Post(constants.RouteBillingCheckout, middleware.RequireAuth, controllers.HandleBillingCheckout)
	group.Post(constants.RouteBillingPortal, middleware.RequireAuth, controllers.HandleBillingPortal)
}

// generateLimiter caps POST requests per user and minute. Admission is still
// decided by the quota.
func generateLimiter(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodPost
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := usercontext.GetUserID(c); id != 0 {
				return "generate:" + strconv.FormatUint(uint64(id), 10)
			}
			return "generate:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   "Too many requests",
			})
		},
	})
}
