package bot

// Update is the subset of a Telegram webhook delivery the bot reads.
type Update struct {
	UpdateID int64            `json:"update_id"`
	Message  *IncomingMessage `json:"message,omitempty"`
}

// IncomingMessage is a chat message inside an Update.
type IncomingMessage struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// User identifies the sender of a message.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

// Chat identifies the conversation a reply goes to.
type Chat struct {
	ID int64 `json:"id"`
}

// SendMessage is returned inline in the webhook response so Telegram
// delivers the reply without a separate API call.
type SendMessage struct {
	Method string `json:"method"`
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}
