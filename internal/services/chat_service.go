package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"

	"lumina-backend/internal/chain"
	api_models "lumina-backend/internal/models"
	"lumina-backend/internal/store"

	"github.com/google/uuid"
)

// Custom errors for the chat pipeline, mapped to status codes in handlers.
var (
	ErrWalletRequired      = errors.New("wallet not connected")
	ErrPromptRequired      = errors.New("message content required")
	ErrInvalidConversation = errors.New("invalid conversation id")
	ErrInsufficientFuel    = errors.New("insufficient fuel")
	ErrChainNotConfigured  = errors.New("fuel ledger not configured")
)

// FuelReader reads a wallet's prepaid balance from the ledger contract.
type FuelReader interface {
	Balance(ctx context.Context, walletAddress string) (*big.Int, error)
}

// FuelDebiter deducts fuel from a wallet through the operator relayer.
type FuelDebiter interface {
	Debit(ctx context.Context, walletAddress string, amount *big.Int) (string, error)
}

// Generator produces a single string result for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, mode api_models.MessageType) (string, error)
}

// ChatService runs the fuel-metered turn pipeline: balance check, generation,
// debit, persistence, and the post-hoc title refresh.
type ChatService struct {
	store   store.Store
	reader  FuelReader
	debiter FuelDebiter
	gen     Generator
	titles  *TitleService
	locks   walletLocks
}

// NewChatService creates a ChatService. reader and debiter may be nil when
// the ledger side is unconfigured; turns are then rejected with
// ErrChainNotConfigured.
func NewChatService(s store.Store, reader FuelReader, debiter FuelDebiter, gen Generator, titles *TitleService) *ChatService {
	return &ChatService{
		store:   s,
		reader:  reader,
		debiter: debiter,
		gen:     gen,
		titles:  titles,
	}
}

// HandleTurn processes one user prompt end to end.
//
// The balance read and the debit are serialized per wallet so two concurrent
// turns from one address cannot both pass the check against the same stale
// balance. Debit failure aborts the turn and nothing is persisted
// (pay-per-success); only the title refresh is allowed to fail silently.
func (s *ChatService) HandleTurn(ctx context.Context, req api_models.ChatRequest) (*api_models.ChatResponse, error) {
	wallet := strings.TrimSpace(req.WalletAddress)
	if wallet == "" {
		return nil, ErrWalletRequired
	}
	if s.reader == nil || s.debiter == nil {
		return nil, ErrChainNotConfigured
	}
	if len(req.Messages) == 0 {
		return nil, ErrPromptRequired
	}
	prompt := req.Messages[len(req.Messages)-1].Content
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptRequired
	}

	mode := req.Type
	if mode == "" {
		mode = api_models.TypeText
	}
	cost := chain.TurnCost(mode == api_models.TypeImage)

	unlock := s.locks.lock(strings.ToLower(wallet))
	defer unlock()

	// 1. Verify fuel balance on-chain.
	balance, err := s.reader.Balance(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("fuel balance check failed: %w", err)
	}
	if balance.Cmp(cost) < 0 {
		return nil, ErrInsufficientFuel
	}

	// 2. Prepare the conversation.
	convID, isNewChat, err := s.ensureConversation(ctx, wallet, req.ConversationID)
	if err != nil {
		return nil, err
	}

	// 3. Generate the response.
	text, err := s.gen.Generate(ctx, prompt, mode)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	// 4. Debit fuel through the relayer. The generation cost is already sunk
	// at this point; a failure here still aborts the turn unrefunded.
	txHash, err := s.debiter.Debit(ctx, wallet, cost)
	if err != nil {
		return nil, fmt.Errorf("fuel debit failure: %w", err)
	}
	log.Printf("[ChatService] debited %s wei from %s for conversation %s (tx %s)", cost, wallet, convID, txHash)

	// 5. Persist the turn.
	err = s.store.AppendTurn(ctx, store.AppendTurnParams{
		ConversationID:   convID,
		WalletAddress:    wallet,
		UserContent:      prompt,
		AssistantContent: text,
		Type:             mode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist turn: %w", err)
	}
	if err := s.store.TouchConversation(ctx, convID); err != nil {
		log.Printf("WARN [ChatService] failed to bump conversation %s: %v", convID, err)
	}

	// 6. Refresh the title once the third prompt/response pair lands.
	s.maybeTitle(ctx, convID)

	return &api_models.ChatResponse{
		Text:           text,
		ConversationID: convID.String(),
		IsNewChat:      isNewChat,
	}, nil
}

func (s *ChatService) ensureConversation(ctx context.Context, wallet, requestedID string) (uuid.UUID, bool, error) {
	if requestedID == "" {
		conv, err := s.store.CreateConversation(ctx, wallet, api_models.DefaultConversationTitle)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to create conversation: %w", err)
		}
		return conv.ID, true, nil
	}

	convID, err := uuid.Parse(requestedID)
	if err != nil {
		return uuid.Nil, false, ErrInvalidConversation
	}
	return convID, false, nil
}

// maybeTitle triggers the title summarizer when the message count hits the
// threshold. Failures here never affect the turn's outcome.
func (s *ChatService) maybeTitle(ctx context.Context, convID uuid.UUID) {
	if s.titles == nil {
		return
	}
	count, err := s.store.CountMessages(ctx, convID)
	if err != nil {
		log.Printf("WARN [ChatService] message count failed for conversation %s: %v", convID, err)
		return
	}
	if count == titleMessageThreshold {
		s.titles.Refresh(ctx, convID)
	}
}

// Balance exposes the chain reader for the fuel meter endpoint.
func (s *ChatService) Balance(ctx context.Context, walletAddress string) (*big.Int, error) {
	if strings.TrimSpace(walletAddress) == "" {
		return nil, ErrWalletRequired
	}
	if s.reader == nil {
		return nil, ErrChainNotConfigured
	}
	return s.reader.Balance(ctx, walletAddress)
}

// ListConversations returns sidebar summaries for a wallet.
func (s *ChatService) ListConversations(ctx context.Context, walletAddress string) ([]api_models.ConversationSummary, error) {
	if strings.TrimSpace(walletAddress) == "" {
		return nil, ErrWalletRequired
	}
	return s.store.ListConversations(ctx, walletAddress)
}

// ListMessages returns a conversation's messages in creation order.
func (s *ChatService) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]api_models.Message, error) {
	return s.store.ListMessages(ctx, conversationID)
}

// DeleteConversation removes a conversation and all of its messages.
func (s *ChatService) DeleteConversation(ctx context.Context, conversationID uuid.UUID) error {
	return s.store.DeleteConversation(ctx, conversationID)
}

// walletLocks serializes the balance-check/debit section per wallet address.
// Entries are never evicted; the map is bounded by the number of distinct
// wallets seen by this process.
type walletLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (w *walletLocks) lock(wallet string) (unlock func()) {
	w.mu.Lock()
	if w.m == nil {
		w.m = make(map[string]*sync.Mutex)
	}
	l, ok := w.m[wallet]
	if !ok {
		l = &sync.Mutex{}
		w.m[wallet] = l
	}
	w.mu.Unlock()

	l.Lock()
	return l.Unlock
}
