package driven

import (
	"context"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
)

// ChatStore persists chat sessions, their messages and the citations of
// assistant messages. Backed by SQLite.
type ChatStore interface {
	// CreateSession creates a session. An empty title gets the default
	// timestamp title.
	CreateSession(ctx context.Context, title string) (*domain.ChatSession, error)

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*domain.ChatSession, error)

	// ListSessions returns sessions newest first.
	ListSessions(ctx context.Context, offset, limit int) ([]domain.ChatSession, error)

	// SaveMessage stores a message and assigns its ID.
	SaveMessage(ctx context.Context, msg *domain.Message) error

	// ListMessages returns a session's messages oldest first, citations
	// attached to assistant messages. A limit of zero or less returns
	// all messages.
	ListMessages(ctx context.Context, sessionID string, offset, limit int) ([]domain.Message, error)

	// SaveCitations stores citations for an assistant message and returns
	// them with assigned IDs.
	SaveCitations(ctx context.Context, messageID int64, citations []domain.Citation) ([]domain.Citation, error)

	// GetCitation retrieves a citation by ID.
	GetCitation(ctx context.Context, id int64) (*domain.Citation, error)

	// Close releases resources.
	Close() error
}
