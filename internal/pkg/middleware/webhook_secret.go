package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/VibesDrop/internal/pkg/metrics"
)

// WebhookSecretHeader carries the shared secret on inbound webhook calls.
const WebhookSecretHeader = "api_key"

// WebhookSecret rejects requests whose api_key header does not match.
func WebhookSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		given := strings.TrimSpace(c.Get(WebhookSecretHeader))
		if secret == "" || given == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(given)) != 1 {
			log.Warnf("[Webhook] Unauthorized webhook call from %s", c.IP())
			metrics.RecordWebhook("rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Next()
	}
}
