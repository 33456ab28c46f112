package chat

import "time"

// Sender values recognised by the history builder.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message persists individual chat turns with the guide.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
