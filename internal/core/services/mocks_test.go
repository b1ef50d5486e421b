package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// It records every call and returns one deterministic vector per text.
type mockEmbeddingService struct {
	mu        sync.Mutex
	calls     []embedCall
	embedErr  error
	vectorFor func(text string) []float32
	// shortBy drops that many vectors from each response, simulating a
	// provider that returns fewer embeddings than texts.
	shortBy int
}

type embedCall struct {
	texts []string
	input driven.EmbedInputType
}

func (m *mockEmbeddingService) Embed(_ context.Context, texts []string, input driven.EmbedInputType) ([][]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, embedCall{texts: texts, input: input})
	m.mu.Unlock()

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		if m.vectorFor != nil {
			result[i] = m.vectorFor(text)
		} else {
			result[i] = []float32{float32(len(text)), 1}
		}
	}
	if m.shortBy > 0 && m.shortBy <= len(result) {
		result = result[:len(result)-m.shortBy]
	}
	return result, nil
}

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockEmbeddingService) callsWith(input driven.EmbedInputType) []embedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []embedCall
	for _, c := range m.calls {
		if c.input == input {
			out = append(out, c)
		}
	}
	return out
}

func (m *mockEmbeddingService) Dimensions() int { return 2 }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// mockIndexBuilder implements driven.IndexBuilder. It builds a
// brute-force inner-product index over the given vectors.
type mockIndexBuilder struct {
	buildErr error
	built    *bruteForceIndex
}

func (m *mockIndexBuilder) Build(_ context.Context, vectors [][]float32) (driven.VectorIndex, error) {
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	m.built = &bruteForceIndex{vectors: vectors}
	return m.built, nil
}

// bruteForceIndex implements driven.VectorIndex by exact inner-product
// scan, so tests get predictable neighbour ordering.
type bruteForceIndex struct {
	vectors   [][]float32
	searchErr error
}

func (b *bruteForceIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if b.searchErr != nil {
		return nil, b.searchErr
	}
	hits := make([]driven.VectorHit, 0, len(b.vectors))
	for i, v := range b.vectors {
		var score float32
		for d := range v {
			score += v[d] * query[d]
		}
		hits = append(hits, driven.VectorHit{Position: i, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (b *bruteForceIndex) Len() int { return len(b.vectors) }

// mockRerankService implements driven.RerankService. By default it
// keeps the candidate order and assigns descending scores.
type mockRerankService struct {
	mu        sync.Mutex
	calls     []rerankCall
	rerankErr error
	// order, when set, gives the candidate indices to return, in order.
	order []int
}

type rerankCall struct {
	query  string
	docs   []domain.Document
	fields []string
	topN   int
}

func (m *mockRerankService) Rerank(_ context.Context, query string, docs []domain.Document, fields []string, topN int) ([]driven.RerankResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, rerankCall{query: query, docs: docs, fields: fields, topN: topN})
	m.mu.Unlock()

	if m.rerankErr != nil {
		return nil, m.rerankErr
	}

	order := m.order
	if order == nil {
		for i := range docs {
			order = append(order, i)
		}
	}
	if topN < len(order) {
		order = order[:topN]
	}

	results := make([]driven.RerankResult, len(order))
	for rank, idx := range order {
		results[rank] = driven.RerankResult{Index: idx, RelevanceScore: 1.0 - float64(rank)*0.1}
	}
	return results, nil
}

func (m *mockRerankService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockRerankService) ModelName() string { return "mock-rerank" }

func (m *mockRerankService) Ping(_ context.Context) error { return nil }

func (m *mockRerankService) Close() error { return nil }

// mockGenerationService implements driven.GenerationService with
// scripted plan and stream responses.
type mockGenerationService struct {
	mu sync.Mutex

	planResult *driven.PlanResult
	planErr    error
	planCalls  []planCall

	streamEvents []driven.StreamEvent
	streamErr    error
	streamCalls  []driven.ChatStreamRequest
}

type planCall struct {
	message  string
	preamble string
	history  []domain.ChatMessage
}

func (m *mockGenerationService) Plan(_ context.Context, message, preamble string, history []domain.ChatMessage) (*driven.PlanResult, error) {
	m.mu.Lock()
	m.planCalls = append(m.planCalls, planCall{message: message, preamble: preamble, history: history})
	m.mu.Unlock()

	if m.planErr != nil {
		return nil, m.planErr
	}
	if m.planResult != nil {
		return m.planResult, nil
	}
	return &driven.PlanResult{}, nil
}

func (m *mockGenerationService) ChatStream(_ context.Context, req driven.ChatStreamRequest) (driven.ChatStream, error) {
	m.mu.Lock()
	m.streamCalls = append(m.streamCalls, req)
	m.mu.Unlock()

	if m.streamErr != nil {
		return nil, m.streamErr
	}
	return &scriptedStream{events: m.streamEvents}, nil
}

func (m *mockGenerationService) lastStreamCall() (driven.ChatStreamRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.streamCalls) == 0 {
		return driven.ChatStreamRequest{}, false
	}
	return m.streamCalls[len(m.streamCalls)-1], true
}

func (m *mockGenerationService) ModelName() string { return "mock-chat" }

func (m *mockGenerationService) Ping(_ context.Context) error { return nil }

func (m *mockGenerationService) Close() error { return nil }

// scriptedStream replays a fixed event sequence, then io.EOF.
type scriptedStream struct {
	events []driven.StreamEvent
	pos    int
}

func (s *scriptedStream) Recv() (*driven.StreamEvent, error) {
	if s.pos >= len(s.events) {
		return nil, io.EOF
	}
	event := s.events[s.pos]
	s.pos++
	return &event, nil
}

func (s *scriptedStream) Close() error { return nil }

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
	loadErr error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	if m.prompts != nil {
		if p, ok := m.prompts[name]; ok {
			return p, nil
		}
	}
	return "prompt:" + name, nil
}

func (m *mockPromptStore) Reload() {}

// mockChatStore implements driven.ChatStore in memory.
type mockChatStore struct {
	mu         sync.Mutex
	sessions   map[string]*domain.ChatSession
	messages   map[string][]domain.Message
	citations  map[int64]domain.Citation
	nextMsgID  int64
	nextCiteID int64
	nextSessID int
}

func newMockChatStore() *mockChatStore {
	return &mockChatStore{
		sessions:  make(map[string]*domain.ChatSession),
		messages:  make(map[string][]domain.Message),
		citations: make(map[int64]domain.Citation),
	}
}

func (m *mockChatStore) CreateSession(_ context.Context, title string) (*domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSessID++
	session := &domain.ChatSession{ID: fmt.Sprintf("sess-%d", m.nextSessID), Title: title}
	m.sessions[session.ID] = session
	return session, nil
}

func (m *mockChatStore) GetSession(_ context.Context, id string) (*domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

func (m *mockChatStore) ListSessions(_ context.Context, _, _ int) ([]domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ChatSession
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockChatStore) SaveMessage(_ context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMsgID++
	msg.ID = m.nextMsgID
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], *msg)
	return nil
}

func (m *mockChatStore) ListMessages(_ context.Context, sessionID string, offset, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[sessionID]
	if offset > len(msgs) {
		offset = len(msgs)
	}
	msgs = msgs[offset:]
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[:limit]
	}
	return append([]domain.Message(nil), msgs...), nil
}

func (m *mockChatStore) SaveCitations(_ context.Context, messageID int64, citations []domain.Citation) ([]domain.Citation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make([]domain.Citation, len(citations))
	for i, c := range citations {
		m.nextCiteID++
		c.ID = m.nextCiteID
		c.MessageID = messageID
		m.citations[c.ID] = c
		saved[i] = c
	}
	return saved, nil
}

func (m *mockChatStore) GetCitation(_ context.Context, id int64) (*domain.Citation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.citations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockChatStore) Close() error { return nil }
