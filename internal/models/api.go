package models

import (
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// ChatMessage is one entry of the message history the frontend sends with a
// turn. Only the last entry's content is forwarded to the generation API; the
// rest is carried for UI replay.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest defines the expected body for the chat endpoint.
type ChatRequest struct {
	Messages       []ChatMessage `json:"messages"`
	WalletAddress  string        `json:"walletAddress"`
	Type           MessageType   `json:"type,omitempty"`           // defaults to "text"
	ConversationID string        `json:"conversationId,omitempty"` // empty starts a new conversation
}

// --- Response Structs ---

// ChatResponse defines the body returned for a successful turn.
type ChatResponse struct {
	Text           string `json:"text"`
	ConversationID string `json:"conversationId"`
	IsNewChat      bool   `json:"isNewChat"`
}

// ConversationSummary is the sidebar projection of a conversation.
type ConversationSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessageResponse is a persisted message as returned by the history endpoint.
type MessageResponse struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"conversationId"`
	Role           Role        `json:"role"`
	Content        string      `json:"content"`
	Type           MessageType `json:"type"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// FuelResponse reports the on-chain fuel balance for a wallet, in wei.
type FuelResponse struct {
	WalletAddress string `json:"walletAddress"`
	Balance       string `json:"balance"`
}

// DeleteResponse acknowledges a conversation deletion.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
