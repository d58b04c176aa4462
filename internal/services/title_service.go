package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	api_models "lumina-backend/internal/models"
	"lumina-backend/internal/store"

	"github.com/google/uuid"
)

// titleMessageThreshold is the persisted message count at which a
// conversation gets its generated title: three user/assistant pairs.
const titleMessageThreshold = 6

// titleContextLimit caps the history context handed to the model.
const titleContextLimit = 2000

const titlePromptFormat = "Generate a concise 3-word title for this obsidian-themed AI chat based on this interaction context:\n%s\n\nRespond ONLY with the 3 words."

// TitleService attaches a short generated label to a conversation once
// enough exchange has accumulated.
type TitleService struct {
	store store.Store
	gen   Generator
}

// NewTitleService creates a TitleService.
func NewTitleService(s store.Store, gen Generator) *TitleService {
	return &TitleService{store: s, gen: gen}
}

// Refresh rebuilds the conversation history, asks the generator for a
// three-word title, and stores it. Errors are logged and swallowed: a failed
// title refresh must never fail the turn that triggered it.
func (t *TitleService) Refresh(ctx context.Context, conversationID uuid.UUID) {
	msgs, err := t.store.ListMessages(ctx, conversationID)
	if err != nil {
		log.Printf("WARN [TitleService] history fetch failed for conversation %s: %v", conversationID, err)
		return
	}

	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	history := strings.Join(lines, "\n")
	if len(history) > titleContextLimit {
		history = history[:titleContextLimit]
	}

	raw, err := t.gen.Generate(ctx, fmt.Sprintf(titlePromptFormat, history), api_models.TypeText)
	if err != nil {
		log.Printf("WARN [TitleService] title generation failed for conversation %s: %v", conversationID, err)
		return
	}

	title := strings.NewReplacer(`"`, "", `'`, "").Replace(strings.TrimSpace(raw))
	if title == "" {
		log.Printf("WARN [TitleService] empty title generated for conversation %s", conversationID)
		return
	}

	if err := t.store.UpdateConversationTitle(ctx, conversationID, title); err != nil {
		log.Printf("WARN [TitleService] title update failed for conversation %s: %v", conversationID, err)
	}
}
