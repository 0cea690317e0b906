package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletbot/internal/bot"
)

// peekUpdate decodes the webhook body without consuming it. The second
// return is false when the body is not a Telegram update.
func peekUpdate(c *fiber.Ctx) (bot.Update, bool) {
	var update bot.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		return bot.Update{}, false
	}
	return update, true
}

func senderOf(update bot.Update) (userID, chatID int64) {
	if update.Message == nil {
		return 0, 0
	}
	if update.Message.From != nil {
		userID = update.Message.From.ID
	}
	chatID = update.Message.Chat.ID
	if chatID == 0 {
		chatID = userID
	}
	return userID, chatID
}
