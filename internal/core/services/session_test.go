package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

func newSessionsFixture(t *testing.T) (*Sessions, *mockChatStore, *mockGenerationService) {
	t.Helper()

	embedder := &mockEmbeddingService{}
	index := builtIndex(t, embedder, testCorpus(3))
	retriever := NewRetriever(index, embedder, &mockRerankService{}, domain.RetrievalSettings{})

	gen := &mockGenerationService{
		planResult: &driven.PlanResult{},
		streamEvents: []driven.StreamEvent{
			{Type: driven.EventTextFragment, Text: "assistant reply"},
			{Type: driven.EventStreamEnd},
		},
	}

	store := newMockChatStore()
	sessions := NewSessions(store, func() *ChatEngine {
		return NewChatEngine(gen, retriever, &mockPromptStore{})
	}, "command-r")

	return sessions, store, gen
}

func TestSessionsCreateSessionDefaultTitle(t *testing.T) {
	sessions, _, _ := newSessionsFixture(t)

	session, err := sessions.CreateSession(context.Background(), "")

	require.NoError(t, err)
	assert.Regexp(t, `^Chat \d{4}-\d{2}-\d{2} \d{2}:\d{2}$`, session.Title)
}

func TestSessionsCreateSessionExplicitTitle(t *testing.T) {
	sessions, _, _ := newSessionsFixture(t)

	session, err := sessions.CreateSession(context.Background(), "Returns question")

	require.NoError(t, err)
	assert.Equal(t, "Returns question", session.Title)
}

func TestSessionsSendMessagePersistsTurn(t *testing.T) {
	sessions, store, gen := newSessionsFixture(t)
	gen.streamEvents = []driven.StreamEvent{
		{Type: driven.EventTextFragment, Text: "assistant reply"},
		{
			Type: driven.EventStreamEnd,
			Citations: []domain.Citation{
				{Start: 0, End: 9, Text: "assistant", DocumentIDs: []string{"0", "2"}},
			},
		},
	}

	session, err := sessions.CreateSession(context.Background(), "test")
	require.NoError(t, err)

	msg, err := sessions.SendMessage(context.Background(), session.ID, "what about returns?")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleAssistant, msg.Role)
	assert.Equal(t, "assistant reply", msg.Content)
	assert.Equal(t, "command-r", msg.AIModel)
	require.Len(t, msg.Citations, 1)
	assert.NotZero(t, msg.Citations[0].ID)
	assert.Equal(t, msg.ID, msg.Citations[0].MessageID)

	// Both the user message and the assistant reply were persisted.
	stored, err := store.ListMessages(context.Background(), session.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, domain.RoleUser, stored[0].Role)
	assert.Equal(t, "what about returns?", stored[0].Content)
	assert.Equal(t, domain.RoleAssistant, stored[1].Role)

	// The stored citation is retrievable on its own.
	citation, err := sessions.GetCitation(context.Background(), msg.Citations[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2"}, citation.DocumentIDs)
}

func TestSessionsSendMessageUnknownSession(t *testing.T) {
	sessions, _, _ := newSessionsFixture(t)

	_, err := sessions.SendMessage(context.Background(), "missing", "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionsAreIndependent(t *testing.T) {
	sessions, _, gen := newSessionsFixture(t)

	first, err := sessions.CreateSession(context.Background(), "first")
	require.NoError(t, err)
	second, err := sessions.CreateSession(context.Background(), "second")
	require.NoError(t, err)

	_, err = sessions.SendMessage(context.Background(), first.ID, "hello from first")
	require.NoError(t, err)
	_, err = sessions.SendMessage(context.Background(), second.ID, "hello from second")
	require.NoError(t, err)

	// The second session's planner call must not see the first
	// session's conversation.
	require.Len(t, gen.planCalls, 2)
	assert.Empty(t, gen.planCalls[1].history)
}

func TestSessionsEngineSeededFromStore(t *testing.T) {
	sessions, store, gen := newSessionsFixture(t)

	session, err := sessions.CreateSession(context.Background(), "resumed")
	require.NoError(t, err)

	// Simulate an earlier run that already persisted a turn.
	require.NoError(t, store.SaveMessage(context.Background(), &domain.Message{
		SessionID: session.ID, Role: domain.RoleUser, Content: "old question",
	}))
	require.NoError(t, store.SaveMessage(context.Background(), &domain.Message{
		SessionID: session.ID, Role: domain.RoleAssistant, Content: "old answer",
	}))

	_, err = sessions.SendMessage(context.Background(), session.ID, "follow-up")
	require.NoError(t, err)

	require.Len(t, gen.planCalls, 1)
	require.Len(t, gen.planCalls[0].history, 2)
	assert.Equal(t, "old question", gen.planCalls[0].history[0].Content)
}

func TestSessionsListMessagesUnknownSession(t *testing.T) {
	sessions, _, _ := newSessionsFixture(t)

	_, err := sessions.ListMessages(context.Background(), "missing", 0, 10)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
