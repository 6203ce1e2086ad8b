package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/VibesDrop/internal/pkg/kv"
)

const healthCheckKey = "health_check"

// HealthController reports whether the store round-trips.
type HealthController struct {
	store   *kv.Store
	hubURL  string
	baseURL string
}

func NewHealthController(store *kv.Store, hubURL, baseURL string) *HealthController {
	return &HealthController{store: store, hubURL: hubURL, baseURL: baseURL}
}

func (hc *HealthController) HandleHealth(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if err := hc.store.SetString(ctx, healthCheckKey, "ok"); err != nil {
		return hc.fail(c, err)
	}
	value, err := hc.store.GetString(ctx, healthCheckKey)
	if err != nil {
		return hc.fail(c, err)
	}

	redisStatus := "connected"
	if value != "ok" {
		redisStatus = "error"
	}
	return c.JSON(fiber.Map{
		"status":       "ok",
		"redis":        redisStatus,
		"farcasterHub": hc.hubURL,
		"baseUrl":      hc.baseURL,
	})
}

func (hc *HealthController) fail(c *fiber.Ctx, err error) error {
	log.Errorf("[Health] Health check failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  "error",
		"message": err.Error(),
	})
}
