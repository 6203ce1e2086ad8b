package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/VibesDrop/app/controllers"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/config"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the wired controllers the routers mount.
type Dependencies struct {
	Config  *config.Config
	Frame   *controllers.FrameController
	Webhook *controllers.WebhookController
	Health  *controllers.HealthController
	OG      *controllers.OGController
	Main    *controllers.MainController
	Admin   *controllers.AdminController
	// LimiterStorage backs the API rate limiter. Nil means in-memory.
	LimiterStorage fiber.Storage
	// DocsFile is the OpenAPI document served under /docs/api. Skipped when empty or missing.
	DocsFile string
}

func InstallRouter(app *fiber.App, deps *Dependencies) {
	setup(app, NewApiRouter(deps), NewHttpRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
