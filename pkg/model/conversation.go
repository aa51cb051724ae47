package model

import (
	"time"

	"github.com/google/uuid"
)

type ConversationID string

// NewConversationID generates a new unique ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

// Conversation is the lightweight aggregate persisted per chat thread.
// Vector records for the thread live only in the in-process memory store
// and are referenced by ConversationID, not embedded here.
type Conversation struct {
	ID           ConversationID
	UserID       string
	Title        string
	Subject      string
	MessageCount int
	Tags         []string
	Archived     bool
	CreatedAt    time.Time
	LastActivity time.Time
}

// NewConversation creates a conversation on the first turn of a thread.
// The title is derived from the opening message.
func NewConversation(id ConversationID, userID, subject, firstMessage string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:           id,
		UserID:       userID,
		Subject:      subject,
		Title:        deriveTitle(firstMessage),
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Touch records n new messages on the conversation.
func (c *Conversation) Touch(n int) {
	c.MessageCount += n
	c.LastActivity = time.Now()
}

const maxTitleLen = 60

func deriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= maxTitleLen {
		return message
	}
	return string(runes[:maxTitleLen]) + "..."
}
