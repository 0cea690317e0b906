package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletbot/internal/bot"
	"github.com/congo-pay/walletbot/internal/middleware"
)

// RegisterWebhookRoutes mounts the Telegram webhook. The bot token is part of
// the path so only Telegram knows the URL.
func RegisterWebhookRoutes(app *fiber.App, h *bot.Handler, d Deps) {
	chain := []fiber.Handler{middleware.WebhookAuth(d.Cfg.BotToken, d.Cfg.WebhookSecret)}
	if d.Cache != nil {
		chain = append(chain,
			middleware.UpdateDedupe(d.Cache, d.Cfg.UpdateDedupeTTL, d.Logger),
			middleware.ChatRateLimit(d.Cache, d.Cfg.RateLimitPerMinute),
		)
	}
	chain = append(chain, h.Webhook)

	app.Post("/webhook/:token", chain...)
}
