package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageType distinguishes text turns from image turns. Image turns cost
// more fuel and their assistant content is a data URI or an external image URL.
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
)

// DefaultConversationTitle is assigned on creation and replaced once the
// title summarizer runs.
const DefaultConversationTitle = "New Synthesis"

// Conversation represents a chat session owned by a wallet address.
type Conversation struct {
	ID            uuid.UUID `db:"id"`
	WalletAddress string    `db:"wallet_address"`
	Title         string    `db:"title"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Message represents one half of a turn inside a conversation. Messages are
// immutable once created; ordering within a conversation is by CreatedAt.
type Message struct {
	ID             uuid.UUID   `db:"id"`
	ConversationID uuid.UUID   `db:"conversation_id"`
	WalletAddress  string      `db:"wallet_address"` // denormalized for query convenience
	Role           Role        `db:"role"`
	Content        string      `db:"content"`
	Type           MessageType `db:"type"`
	CreatedAt      time.Time   `db:"created_at"`
}
