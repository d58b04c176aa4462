package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"

	db_models "lumina-backend/internal/models"
	"lumina-backend/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Compile-time check to ensure PostgresStore implements store.Store
var _ store.Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateConversation inserts a new conversation row for a wallet and returns it.
func (s *PostgresStore) CreateConversation(ctx context.Context, walletAddress, title string) (*db_models.Conversation, error) {
	query := `
		INSERT INTO conversations (id, wallet_address, title)
		VALUES ($1, $2, $3)
		RETURNING id, wallet_address, title, created_at, updated_at`

	conv := &db_models.Conversation{}
	err := s.db.QueryRow(ctx, query, uuid.New(), walletAddress, title).Scan(
		&conv.ID,
		&conv.WalletAddress,
		&conv.Title,
		&conv.CreatedAt,
		&conv.UpdatedAt,
	)
	if err != nil {
		log.Printf("ERROR [PostgresStore] CreateConversation: insert failed for wallet %s: %v", walletAddress, err)
		return nil, fmt.Errorf("database error creating conversation: %w", err)
	}

	log.Printf("[PostgresStore] CreateConversation: created %s for wallet %s", conv.ID, walletAddress)
	return conv, nil
}

// ListConversations returns sidebar summaries for a wallet, most recently
// updated first.
func (s *PostgresStore) ListConversations(ctx context.Context, walletAddress string) ([]db_models.ConversationSummary, error) {
	query := `
		SELECT id, title, updated_at
		FROM conversations
		WHERE wallet_address = $1
		ORDER BY updated_at DESC`

	rows, err := s.db.Query(ctx, query, walletAddress)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListConversations: query failed for wallet %s: %v", walletAddress, err)
		return nil, fmt.Errorf("database error listing conversations: %w", err)
	}
	defer rows.Close()

	summaries := make([]db_models.ConversationSummary, 0)
	for rows.Next() {
		var c db_models.ConversationSummary
		if err := rows.Scan(&c.ID, &c.Title, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning conversation: %w", err)
		}
		summaries = append(summaries, c)
	}

	return summaries, rows.Err()
}

// TouchConversation bumps updated_at so the conversation surfaces at the top
// of the sidebar listing.
func (s *PostgresStore) TouchConversation(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := s.db.Exec(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		log.Printf("ERROR [PostgresStore] TouchConversation: update failed for %s: %v", id, err)
		return fmt.Errorf("database error touching conversation: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateConversationTitle replaces the display title.
func (s *PostgresStore) UpdateConversationTitle(ctx context.Context, id uuid.UUID, title string) error {
	cmdTag, err := s.db.Exec(ctx, `UPDATE conversations SET title = $2, updated_at = NOW() WHERE id = $1`, id, title)
	if err != nil {
		log.Printf("ERROR [PostgresStore] UpdateConversationTitle: update failed for %s: %v", id, err)
		return fmt.Errorf("database error updating conversation title: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	log.Printf("[PostgresStore] UpdateConversationTitle: conversation %s titled %q", id, title)
	return nil
}

// DeleteConversation removes the conversation and every message referencing
// it. Messages go first so the foreign key never blocks the second delete.
func (s *PostgresStore) DeleteConversation(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM messages WHERE conversation_id = $1`, id); err != nil {
		log.Printf("ERROR [PostgresStore] DeleteConversation: message delete failed for %s: %v", id, err)
		return fmt.Errorf("database error deleting messages: %w", err)
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id); err != nil {
		log.Printf("ERROR [PostgresStore] DeleteConversation: conversation delete failed for %s: %v", id, err)
		return fmt.Errorf("database error deleting conversation: %w", err)
	}
	log.Printf("[PostgresStore] DeleteConversation: removed %s and its messages", id)
	return nil
}

// AppendTurn inserts the user message then the assistant message.
func (s *PostgresStore) AppendTurn(ctx context.Context, arg store.AppendTurnParams) error {
	query := `
		INSERT INTO messages (id, conversation_id, wallet_address, role, content, type)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.Exec(ctx, query,
		uuid.New(), arg.ConversationID, arg.WalletAddress, db_models.RoleUser, arg.UserContent, arg.Type)
	if err != nil {
		log.Printf("ERROR [PostgresStore] AppendTurn: user insert failed for conversation %s: %v", arg.ConversationID, err)
		return fmt.Errorf("database error inserting user message: %w", err)
	}

	_, err = s.db.Exec(ctx, query,
		uuid.New(), arg.ConversationID, arg.WalletAddress, db_models.RoleAssistant, arg.AssistantContent, arg.Type)
	if err != nil {
		log.Printf("ERROR [PostgresStore] AppendTurn: assistant insert failed for conversation %s: %v", arg.ConversationID, err)
		return fmt.Errorf("database error inserting assistant message: %w", err)
	}

	return nil
}

// ListMessages returns a conversation's messages ordered oldest first. The
// ordering is load-bearing for chat replay and the title context.
func (s *PostgresStore) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]db_models.Message, error) {
	query := `
		SELECT id, conversation_id, wallet_address, role, content, type, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query, conversationID)
	if err != nil {
		log.Printf("ERROR [PostgresStore] ListMessages: query failed for conversation %s: %v", conversationID, err)
		return nil, fmt.Errorf("database error listing messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]db_models.Message, 0)
	for rows.Next() {
		var m db_models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.WalletAddress, &m.Role, &m.Content, &m.Type, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("database error scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}

	return msgs, rows.Err()
}

// CountMessages returns the number of persisted messages in a conversation.
func (s *PostgresStore) CountMessages(ctx context.Context, conversationID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		log.Printf("ERROR [PostgresStore] CountMessages: query failed for conversation %s: %v", conversationID, err)
		return 0, fmt.Errorf("database error counting messages: %w", err)
	}
	return count, nil
}
