package controllers

import (
	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/ManuelReschke/VibesDrop/internal/pkg/frame"
	"github.com/ManuelReschke/VibesDrop/views"
)

// MainController renders the page the frame is shared from.
type MainController struct {
	builder *frame.Builder
	channel string
}

func NewMainController(builder *frame.Builder, channel string) *MainController {
	return &MainController{builder: builder, channel: channel}
}

func (mc *MainController) RenderLanding(c *fiber.Ctx) error {
	landing := views.Landing(views.LandingData{
		Channel: mc.channel,
		BaseURL: mc.builder.BaseURL,
		Frame:   mc.builder.Build(frame.ScreenEntry),
	})

	handler := adaptor.HTTPHandler(templ.Handler(landing))

	return handler(c)
}
