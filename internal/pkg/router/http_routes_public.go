package router

import (
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", h.deps.Main.RenderLanding)

	// SWAGGER / OPENAPI
	if h.deps.DocsFile == "" {
		return
	}
	if _, err := os.Stat(h.deps.DocsFile); err != nil {
		log.Warnf("[Router] OpenAPI document %s not found, /docs/api disabled", h.deps.DocsFile)
		return
	}
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: h.deps.DocsFile,
		Path:     "v1",
		Title:    "VibesDrop API",
	}))
}
