package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/walletbot/internal/bot"
)

const (
	rateLimitPrefix = "rl:chat:"
	rateLimitReply  = "⏳ Too many requests. Please wait a minute and try again."
)

// ChatRateLimit caps the number of messages a user may send per minute. Over
// the limit the update is acknowledged with an inline notice instead of a
// non-2xx status, which Telegram would retry. Without Redis, or on cache
// errors, it fails open.
func ChatRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cache == nil || maxPerMin <= 0 {
			return c.Next()
		}
		update, ok := peekUpdate(c)
		if !ok {
			return c.Next()
		}
		userID, chatID := senderOf(update)
		if userID == 0 {
			return c.Next()
		}

		key := rateLimitPrefix + strconv.FormatInt(userID, 10)
		// The window TTL is set in the same transaction as the increment, so
		// a counter can never be left without an expiry.
		pipe := cache.TxPipeline()
		incr := pipe.Incr(c.UserContext(), key)
		pipe.ExpireNX(c.UserContext(), key, time.Minute)
		if _, err := pipe.Exec(c.UserContext()); err != nil {
			return c.Next()
		}
		if incr.Val() > int64(maxPerMin) {
			return c.Status(http.StatusOK).JSON(bot.SendMessage{
				Method: "sendMessage",
				ChatID: chatID,
				Text:   rateLimitReply,
			})
		}
		return c.Next()
	}
}
