package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message senders. The sender string is stored verbatim; anything that is not
// the assistant maps to the user role when prompts are rebuilt.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message is one entry in a session transcript. The transcript is append-only
// and time-ordered; messages are never edited or removed.
type Message struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a chat conversation owned by one customer. It lives indefinitely
// as an audit trail.
type Session struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	StartedAt  time.Time `json:"started_at"`
}
