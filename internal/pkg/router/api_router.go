package router

import (
	apiv1 "github.com/ManuelReschke/ChapterFox/internal/api/v1"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/config"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
	cfg *config.Settings
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes; everything but /ping needs a session
	v1 := api.Group("/v1")
	v1.Use("/eligibility", middleware.RequireAPISessionAuth)
	v1.Use("/chapters", middleware.RequireAPISessionAuth, generateLimiter(h.cfg.GenerateRateLimit))
	apiServer := apiv1.NewAPIServer()
	apiv1.RegisterHandlers(v1, apiServer)
}

func NewApiRouter(cfg *config.Settings) *ApiRouter {
	return &ApiRouter{cfg: cfg}
}
