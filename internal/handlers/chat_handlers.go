package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	api_models "lumina-backend/internal/models"
	"lumina-backend/internal/services"
	"lumina-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ChatHandlers handles HTTP requests for the chat pipeline and conversation
// management.
type ChatHandlers struct {
	chatService *services.ChatService
}

// NewChatHandlers creates a new ChatHandlers instance.
func NewChatHandlers(chatService *services.ChatService) *ChatHandlers {
	return &ChatHandlers{chatService: chatService}
}

// HandleChat processes one fuel-metered turn.
// POST /v1/chat
func (h *ChatHandlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req api_models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.chatService.HandleTurn(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWalletRequired):
			httputil.RespondError(w, http.StatusBadRequest, "Wallet not connected")
		case errors.Is(err, services.ErrPromptRequired), errors.Is(err, services.ErrInvalidConversation):
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrInsufficientFuel):
			httputil.RespondError(w, http.StatusPaymentRequired, "Insufficient fuel. Please deposit MON.")
		case errors.Is(err, services.ErrChainNotConfigured):
			httputil.RespondError(w, http.StatusInternalServerError, "Backend system synchronization error. Please contact administrator.")
		default:
			httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleListChats returns the sidebar listing for a wallet.
// GET /v1/chats?walletAddress=0x…
func (h *ChatHandlers) HandleListChats(w http.ResponseWriter, r *http.Request) {
	walletAddress := r.URL.Query().Get("walletAddress")
	if walletAddress == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Wallet address required")
		return
	}

	chats, err := h.chatService.ListConversations(r.Context(), walletAddress)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chats)
}

// HandleGetMessages returns one conversation's messages, oldest first.
// GET /v1/chats/{conversationID}
func (h *ChatHandlers) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid conversation ID")
		return
	}

	msgs, err := h.chatService.ListMessages(r.Context(), conversationID)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]api_models.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, api_models.MessageResponse{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			Role:           m.Role,
			Content:        m.Content,
			Type:           m.Type,
			CreatedAt:      m.CreatedAt,
		})
	}

	httputil.RespondJSON(w, http.StatusOK, out)
}

// HandleDeleteChat removes a conversation and all of its messages.
// DELETE /v1/chats?id=…
func (h *ChatHandlers) HandleDeleteChat(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Chat ID required")
		return
	}
	conversationID, err := uuid.Parse(idStr)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid chat ID")
		return
	}

	if err := h.chatService.DeleteConversation(r.Context(), conversationID); err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	httputil.RespondJSON(w, http.StatusOK, api_models.DeleteResponse{Success: true})
}

// HandleGetFuel reports the on-chain fuel balance for a wallet.
// GET /v1/fuel?walletAddress=0x…
func (h *ChatHandlers) HandleGetFuel(w http.ResponseWriter, r *http.Request) {
	walletAddress := r.URL.Query().Get("walletAddress")

	balance, err := h.chatService.Balance(r.Context(), walletAddress)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWalletRequired):
			httputil.RespondError(w, http.StatusBadRequest, "Wallet address required")
		case errors.Is(err, services.ErrChainNotConfigured):
			httputil.RespondError(w, http.StatusInternalServerError, "Backend system synchronization error. Please contact administrator.")
		default:
			httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	httputil.RespondJSON(w, http.StatusOK, api_models.FuelResponse{
		WalletAddress: walletAddress,
		Balance:       balance.String(),
	})
}
