package store

import (
	"context"
	"errors"

	db_models "lumina-backend/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a specific record is not found.
var ErrNotFound = errors.New("record not found")

// AppendTurnParams carries one user/assistant message pair. The two inserts
// run in sequence; there is no transactional guarantee against a partial pair
// (see DESIGN.md), but callers observe the pair as a single operation.
type AppendTurnParams struct {
	ConversationID   uuid.UUID
	WalletAddress    string
	UserContent      string
	AssistantContent string
	Type             db_models.MessageType
}

// Store defines the interface for database operations.
// This allows for mocking in tests and potential DB backend switching.
type Store interface {
	// Conversation operations
	CreateConversation(ctx context.Context, walletAddress, title string) (*db_models.Conversation, error)
	ListConversations(ctx context.Context, walletAddress string) ([]db_models.ConversationSummary, error)
	TouchConversation(ctx context.Context, id uuid.UUID) error
	UpdateConversationTitle(ctx context.Context, id uuid.UUID, title string) error
	DeleteConversation(ctx context.Context, id uuid.UUID) error

	// Message operations
	AppendTurn(ctx context.Context, arg AppendTurnParams) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]db_models.Message, error)
	CountMessages(ctx context.Context, conversationID uuid.UUID) (int, error)
}
