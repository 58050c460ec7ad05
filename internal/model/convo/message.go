package convo

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sender identifies which side of the dialogue produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is a single immutable conversation turn.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"createdAt"`
	Model     string    `json:"model,omitempty"`
}

// NewMessageID returns an identifier that is unique for the session lifetime.
// The millisecond prefix keeps ids roughly sortable; the uuid suffix
// disambiguates timestamp collisions under rapid appends.
func NewMessageID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
