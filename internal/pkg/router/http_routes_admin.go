package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/ManuelReschke/VibesDrop/internal/pkg/metrics"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	cfg := h.deps.Config
	adminAuth := middleware.AdminAuth(cfg.AdminUsername, cfg.AdminPassword)

	adminGroup := app.Group("/admin", adminAuth)
	adminGroup.Get("/", h.deps.Admin.HandleDashboard)
	adminGroup.Get("/export.csv", h.deps.Admin.HandleExportCSV)
	adminGroup.Post("/export/s3", h.deps.Admin.HandleExportS3)
	adminGroup.Get("/monitor", monitor.New(monitor.Config{Title: "VibesDrop Monitor"}))

	// prometheus scrape endpoint
	app.Get("/metrics", adminAuth, metrics.Handler())
}
