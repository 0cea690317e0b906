package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookAuth accepts a delivery only when the :token path parameter matches
// the bot token and, if a secret is configured, the Telegram secret header
// matches it as well. A wrong path answers 404 so the endpoint is not probed.
func WebhookAuth(botToken, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !equal(c.Params("token"), botToken) {
			return fiber.NewError(http.StatusNotFound, "not found")
		}
		if secret != "" && !equal(c.Get(secretTokenHeader), secret) {
			return fiber.NewError(http.StatusUnauthorized, "invalid secret token")
		}
		return c.Next()
	}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
