package driving

import (
	"context"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
)

// ChatService drives a single conversation with the assistant.
type ChatService interface {
	// Chat runs one full turn: plans search queries for the user message,
	// retrieves grounding passages when the turn needs them, streams the
	// response to completion and returns the final text with citations
	// and the retrieved documents that backed them.
	Chat(ctx context.Context, message string) (*domain.ChatResult, error)

	// NewChat discards the accumulated conversation history so the next
	// turn starts a fresh conversation.
	NewChat()

	// History returns a copy of the current conversation history.
	History() []domain.ChatMessage
}

// SessionService manages persisted chat sessions for external actors.
// Each session owns its own conversation state; turns in different
// sessions are independent.
type SessionService interface {
	// CreateSession starts a new session. An empty title gets a
	// timestamp-based default.
	CreateSession(ctx context.Context, title string) (*domain.ChatSession, error)

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)

	// ListSessions returns sessions ordered by creation time.
	ListSessions(ctx context.Context, offset, limit int) ([]domain.ChatSession, error)

	// SendMessage runs a chat turn within a session, persisting the user
	// message, the assistant reply and its citations.
	SendMessage(ctx context.Context, sessionID, content string) (*domain.Message, error)

	// ListMessages returns a session's messages with their citations.
	ListMessages(ctx context.Context, sessionID string, offset, limit int) ([]domain.Message, error)

	// GetCitation retrieves a single citation by ID.
	GetCitation(ctx context.Context, id int64) (*domain.Citation, error)
}
