package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/VibesDrop/internal/pkg/frame"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/ogimage"
)

// ImageRenderer produces the PNG for a screen.
type ImageRenderer interface {
	Render(s frame.Screen) ([]byte, error)
}

// OGController serves the frame screen images.
type OGController struct {
	renderer ImageRenderer
}

func NewOGController(renderer ImageRenderer) *OGController {
	return &OGController{renderer: renderer}
}

// HandleScreenImage serves /api/og and /api/og/:screen.
func (oc *OGController) HandleScreenImage(c *fiber.Ctx) error {
	screen, ok := frame.ParseScreen(c.Params("screen"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown screen"})
	}

	data, err := oc.renderer.Render(screen)
	if err != nil {
		log.Errorf("[OGImage] Error rendering %s: %v", screen, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not render image"})
	}

	c.Set(fiber.HeaderContentType, ogimage.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=300")
	return c.Send(data)
}
