package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/tidwall/gjson"

	"github.com/ManuelReschke/VibesDrop/app/repository"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/metrics"
)

// WebhookController stores notifications pushed by Neynar. The shared
// secret is checked by middleware before HandleWebhook runs.
type WebhookController struct {
	events repository.WebhookRepository
}

func NewWebhookController(events repository.WebhookRepository) *WebhookController {
	return &WebhookController{events: events}
}

// HandleWebhook logs the payload and always acknowledges once authorized,
// even when persisting failed, so the sender does not retry in a loop.
func (wc *WebhookController) HandleWebhook(c *fiber.Ctx) error {
	body := c.Body()
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		metrics.RecordWebhook("invalid")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	// fiber reuses the body buffer after the handler returns
	payload := make([]byte, len(body))
	copy(payload, body)

	event, err := wc.events.Append(c.UserContext(), payload)
	if err != nil {
		metrics.RecordWebhook("failed")
		metrics.RecordUpstreamError("redis")
		log.Errorf("[Webhook] Error logging webhook event: %v", err)
		return c.JSON(fiber.Map{"success": true})
	}

	metrics.RecordWebhook("stored")
	log.Infof("[Webhook] Received %s event %s", orUnknown(event.EventType()), event.ID)
	return c.JSON(fiber.Map{"success": true})
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
