package router

import (
	"github.com/ManuelReschke/ChapterFox/internal/pkg/config"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/middleware"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/oauth"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
	cfg *config.Settings
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup(h.cfg.PublicDomain)

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter(cfg *config.Settings) *HttpRouter {
	return &HttpRouter{cfg: cfg}
}
