package bot

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

const methodSendMessage = "sendMessage"

// Handler exposes the Telegram webhook endpoint.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler builds a webhook handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Webhook handles one Update and answers with an inline sendMessage call.
// Updates without a text message are acknowledged with an empty 200.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	var update Update
	if err := c.BodyParser(&update); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if update.Message == nil || update.Message.Text == "" {
		return c.SendStatus(http.StatusOK)
	}

	msg := Message{Text: update.Message.Text}
	if update.Message.From != nil {
		msg.UserID = update.Message.From.ID
	}

	reply := h.service.Handle(c.UserContext(), msg)
	if reply == "" {
		return c.SendStatus(http.StatusOK)
	}

	chatID := update.Message.Chat.ID
	if chatID == 0 {
		chatID = msg.UserID
	}

	h.logger.Debug("webhook reply",
		slog.Int64("update_id", update.UpdateID),
		slog.Int64("user_id", msg.UserID),
		slog.Int64("chat_id", chatID),
	)

	return c.Status(http.StatusOK).JSON(SendMessage{
		Method: methodSendMessage,
		ChatID: chatID,
		Text:   reply,
	})
}
