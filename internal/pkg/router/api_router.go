package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/VibesDrop/internal/pkg/middleware"
)

type ApiRouter struct {
	deps *Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", middleware.APICORS())

	// authorized webhook deliveries are never throttled
	api.Post("/webhook", middleware.WebhookSecret(h.deps.Config.NeynarWebhookSecret), h.deps.Webhook.HandleWebhook)

	limit := middleware.APIRateLimit(h.deps.Config.APIRateLimit, h.deps.LimiterStorage)

	api.Post("/frame", limit, h.deps.Frame.HandleFrameAction)
	api.Get("/health", limit, h.deps.Health.HandleHealth)

	api.Get("/og", limit, h.deps.OG.HandleScreenImage)
	api.Get("/og/:screen", limit, h.deps.OG.HandleScreenImage)
}

func NewApiRouter(deps *Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
