// Package memory provides in-memory implementations of driven store
// ports, used for tests and for running without a data directory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

// Ensure ChatStore implements the interface.
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore is an in-memory implementation of driven.ChatStore.
type ChatStore struct {
	mu         sync.RWMutex
	sessions   map[string]domain.ChatSession
	order      []string // session ids, oldest first
	messages   map[string][]domain.Message
	citations  map[int64]domain.Citation
	nextMsgID  int64
	nextCiteID int64
}

// NewChatStore creates a new in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{
		sessions:  make(map[string]domain.ChatSession),
		messages:  make(map[string][]domain.Message),
		citations: make(map[int64]domain.Citation),
	}
}

// CreateSession creates a session. An empty title gets the default
// timestamp title.
func (s *ChatStore) CreateSession(_ context.Context, title string) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if title == "" {
		title = domain.DefaultSessionTitle(now)
	}
	session := domain.ChatSession{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
	}
	s.sessions[session.ID] = session
	s.order = append(s.order, session.ID)
	return &session, nil
}

// GetSession retrieves a session by ID.
func (s *ChatStore) GetSession(_ context.Context, id string) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &session, nil
}

// ListSessions returns sessions newest first. A limit of zero or less
// returns all sessions.
func (s *ChatStore) ListSessions(_ context.Context, offset, limit int) ([]domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	newest := make([]domain.ChatSession, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		newest = append(newest, s.sessions[s.order[i]])
	}
	return paginate(newest, offset, limit), nil
}

// SaveMessage stores a message and assigns its ID.
func (s *ChatStore) SaveMessage(_ context.Context, msg *domain.Message) error {
	if !domain.ValidRole(msg.Role) {
		return fmt.Errorf("%w: role %q", domain.ErrInvalidInput, msg.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	s.nextMsgID++
	msg.ID = s.nextMsgID
	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], *msg)
	return nil
}

// ListMessages returns a session's messages oldest first, citations
// attached to assistant messages. A limit of zero or less returns all
// messages.
func (s *ChatStore) ListMessages(_ context.Context, sessionID string, offset, limit int) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page := paginate(s.messages[sessionID], offset, limit)
	out := make([]domain.Message, len(page))
	for i, msg := range page {
		msg.Citations = nil
		for _, citation := range s.citations {
			if citation.MessageID == msg.ID {
				msg.Citations = append(msg.Citations, citation)
			}
		}
		sortCitations(msg.Citations)
		out[i] = msg
	}
	return out, nil
}

// SaveCitations stores citations for an assistant message and returns
// them with assigned IDs.
func (s *ChatStore) SaveCitations(_ context.Context, messageID int64, citations []domain.Citation) ([]domain.Citation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make([]domain.Citation, len(citations))
	for i, citation := range citations {
		s.nextCiteID++
		citation.ID = s.nextCiteID
		citation.MessageID = messageID
		s.citations[citation.ID] = citation
		saved[i] = citation
	}
	return saved, nil
}

// GetCitation retrieves a citation by ID.
func (s *ChatStore) GetCitation(_ context.Context, id int64) (*domain.Citation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	citation, ok := s.citations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &citation, nil
}

// Close releases resources.
func (s *ChatStore) Close() error {
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}

func sortCitations(citations []domain.Citation) {
	sort.Slice(citations, func(i, j int) bool { return citations[i].ID < citations[j].ID })
}
