package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driving"
	"github.com/YusuphaJuwara/chatbotgermano/internal/logger"
)

// Ensure Sessions implements the interface.
var _ driving.SessionService = (*Sessions)(nil)

// Sessions manages persisted chat sessions. Each session gets its own
// ChatEngine so conversations stay independent; the store keeps the
// durable record of messages and citations.
type Sessions struct {
	store      driven.ChatStore
	newEngine  func() *ChatEngine
	modelLabel string

	mu      sync.Mutex
	engines map[string]*ChatEngine
}

// NewSessions creates the session service. newEngine is called once per
// session to create its conversation engine; modelLabel is recorded on
// assistant messages.
func NewSessions(store driven.ChatStore, newEngine func() *ChatEngine, modelLabel string) *Sessions {
	return &Sessions{
		store:      store,
		newEngine:  newEngine,
		modelLabel: modelLabel,
		engines:    make(map[string]*ChatEngine),
	}
}

// CreateSession starts a new session. An empty title gets a
// timestamp-based default.
func (s *Sessions) CreateSession(ctx context.Context, title string) (*domain.ChatSession, error) {
	if title == "" {
		title = domain.DefaultSessionTitle(time.Now())
	}
	session, err := s.store.CreateSession(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	logger.Info("Created session %s (%q)", session.ID, session.Title)
	return session, nil
}

// GetSession retrieves a session by ID.
func (s *Sessions) GetSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	return s.store.GetSession(ctx, id)
}

// ListSessions returns sessions ordered by creation time.
func (s *Sessions) ListSessions(ctx context.Context, offset, limit int) ([]domain.ChatSession, error) {
	return s.store.ListSessions(ctx, offset, limit)
}

// SendMessage runs a chat turn within a session. The user message, the
// assistant reply and its citations are persisted before returning.
func (s *Sessions) SendMessage(ctx context.Context, sessionID, content string) (*domain.Message, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	engine, err := s.engine(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userMsg := &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   content,
	}
	if err := s.store.SaveMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	result, err := engine.Chat(ctx, content)
	if err != nil {
		return nil, err
	}

	assistantMsg := &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   result.Text,
		AIModel:   s.modelLabel,
	}
	if err := s.store.SaveMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	if len(result.Citations) > 0 {
		saved, err := s.store.SaveCitations(ctx, assistantMsg.ID, result.Citations)
		if err != nil {
			return nil, fmt.Errorf("save citations: %w", err)
		}
		assistantMsg.Citations = saved
	}

	return assistantMsg, nil
}

// ListMessages returns a session's messages with their citations.
func (s *Sessions) ListMessages(ctx context.Context, sessionID string, offset, limit int) ([]domain.Message, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return s.store.ListMessages(ctx, sessionID, offset, limit)
}

// GetCitation retrieves a single citation by ID.
func (s *Sessions) GetCitation(ctx context.Context, id int64) (*domain.Citation, error) {
	return s.store.GetCitation(ctx, id)
}

// engine returns the session's conversation engine, creating it and
// seeding its history from persisted messages on first use.
func (s *Sessions) engine(ctx context.Context, sessionID string) (*ChatEngine, error) {
	s.mu.Lock()
	if engine, ok := s.engines[sessionID]; ok {
		s.mu.Unlock()
		return engine, nil
	}
	s.mu.Unlock()

	messages, err := s.store.ListMessages(ctx, sessionID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load session history: %w", err)
	}

	engine := s.newEngine()
	history := make([]domain.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		history = append(history, domain.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	engine.setHistory(history)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.engines[sessionID]; ok {
		return existing, nil
	}
	s.engines[sessionID] = engine
	logger.Debug("Seeded engine for session %s with %d messages", sessionID, len(history))
	return engine, nil
}
