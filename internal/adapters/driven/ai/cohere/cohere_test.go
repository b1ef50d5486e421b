package cohere

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:            "test-key",
		BaseURL:           server.URL,
		RequestsPerMinute: -1, // no pacing in tests
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})

	assert.Error(t, err)
}

func TestEmbedSendsInputType(t *testing.T) {
	var got embedRequest
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	service := NewEmbeddingService(client, "", 0)

	embeddings, err := service.Embed(context.Background(), []string{"a", "b"}, driven.EmbedInputDocument)

	require.NoError(t, err)
	require.Len(t, embeddings, 2)
	assert.InDelta(t, 0.3, embeddings[1][0], 1e-6)

	assert.Equal(t, DefaultEmbedModel, got.Model)
	assert.Equal(t, "search_document", got.InputType)
	assert.Equal(t, []string{"a", "b"}, got.Texts)
}

func TestEmbedQueryInputType(t *testing.T) {
	var got embedRequest
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{1}}})
	}))
	service := NewEmbeddingService(client, "", 0)

	_, err := service.Embed(context.Background(), []string{"q"}, driven.EmbedInputQuery)

	require.NoError(t, err)
	assert.Equal(t, "search_query", got.InputType)
}

func TestEmbedBatchLimit(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not reach the API")
	}))
	service := NewEmbeddingService(client, "", 0)

	texts := make([]string, MaxEmbedBatch+1)
	_, err := service.Embed(context.Background(), texts, driven.EmbedInputDocument)

	assert.Error(t, err)
}

func TestEmbedNoTexts(t *testing.T) {
	service := NewEmbeddingService(nil, "", 0)

	embeddings, err := service.Embed(context.Background(), nil, driven.EmbedInputDocument)

	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestEmbedDimensionsFromModel(t *testing.T) {
	assert.Equal(t, 1024, NewEmbeddingService(nil, "embed-english-v3.0", 0).Dimensions())
	assert.Equal(t, 384, NewEmbeddingService(nil, "embed-english-light-v3.0", 0).Dimensions())
	assert.Equal(t, 2048, NewEmbeddingService(nil, "embed-english-v3.0", 2048).Dimensions())
}

func TestEmbedAPIError(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(apiError{Message: "rate limited"})
	}))
	service := NewEmbeddingService(client, "", 0)

	_, err := service.Embed(context.Background(), []string{"a"}, driven.EmbedInputDocument)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestRerank(t *testing.T) {
	var got rerankRequest
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rerank", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"results":[{"index":1,"relevance_score":0.98},{"index":0,"relevance_score":0.42}]}`)
	}))
	service := NewRerankService(client, "")

	docs := []domain.Document{
		{ID: "0", Title: "FAQ", Text: "first"},
		{ID: "1", Title: "FAQ", Text: "second"},
	}
	results, err := service.Rerank(context.Background(), "query", docs, []string{"title", "text"}, 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Index)
	assert.InDelta(t, 0.98, results[0].RelevanceScore, 1e-6)

	assert.Equal(t, DefaultRerankModel, got.Model)
	assert.Equal(t, "query", got.Query)
	assert.Equal(t, 2, got.TopN)
	assert.Equal(t, []string{"title", "text"}, got.RankFields)
	require.Len(t, got.Documents, 2)
	assert.Equal(t, "second", got.Documents[1].Text)
}

func TestRerankNoDocuments(t *testing.T) {
	service := NewRerankService(nil, "")

	results, err := service.Rerank(context.Background(), "q", nil, nil, 3)

	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestPlan(t *testing.T) {
	var got chatRequest
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"search_queries":[{"text":"return policy"},{"text":"refund window"}]}`)
	}))
	service := NewGenerationService(client, "")

	history := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
	}
	plan, err := service.Plan(context.Background(), "can I return it?", "planning prompt", history)

	require.NoError(t, err)
	assert.Equal(t, []string{"return policy", "refund window"}, plan.SearchQueries)

	assert.True(t, got.SearchQueriesOnly)
	assert.False(t, got.Stream)
	assert.Equal(t, "planning prompt", got.Preamble)
	require.Len(t, got.ChatHistory, 2)
	assert.Equal(t, "USER", got.ChatHistory[0].Role)
	assert.Equal(t, "CHATBOT", got.ChatHistory[1].Role)
}

func TestPlanTextOnly(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"text":"query one\nquery two","search_queries":[]}`)
	}))
	service := NewGenerationService(client, "")

	plan, err := service.Plan(context.Background(), "msg", "", nil)

	require.NoError(t, err)
	assert.Empty(t, plan.SearchQueries)
	assert.Equal(t, "query one\nquery two", plan.Text)
}

func TestChatStream(t *testing.T) {
	var got chatRequest
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"event_type":"stream-start","generation_id":"g1"}
{"event_type":"text-generation","text":"Returns are "}
{"event_type":"text-generation","text":"accepted."}
{"event_type":"citation-generation","citations":[{"start":0,"end":7}]}
{"event_type":"stream-end","finish_reason":"COMPLETE","response":{"text":"Returns are accepted.","citations":[{"start":0,"end":7,"text":"Returns","document_ids":["0"]}],"documents":[{"id":"0","title":"FAQ","text":"body"}],"chat_history":[{"role":"USER","message":"q"},{"role":"CHATBOT","message":"Returns are accepted."}]}}
`)
	}))
	service := NewGenerationService(client, "")

	stream, err := service.ChatStream(context.Background(), driven.ChatStreamRequest{
		Message:   "can I return it?",
		Preamble:  "answer prompt",
		Documents: []domain.RetrievedChunk{{ID: "0", Title: "FAQ", Text: "body"}},
	})
	require.NoError(t, err)
	defer stream.Close()

	assert.True(t, got.Stream)
	require.Len(t, got.Documents, 1)

	// First two events are text fragments; the intermediate
	// citation-generation event is skipped.
	first, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, driven.EventTextFragment, first.Type)
	assert.Equal(t, "Returns are ", first.Text)

	second, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "accepted.", second.Text)

	terminal, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, driven.EventStreamEnd, terminal.Type)
	require.Len(t, terminal.Citations, 1)
	assert.Equal(t, []string{"0"}, terminal.Citations[0].DocumentIDs)
	require.Len(t, terminal.Documents, 1)
	require.Len(t, terminal.History, 2)
	assert.Equal(t, domain.RoleAssistant, terminal.History[1].Role)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestChatStreamTruncated(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"event_type":"text-generation","text":"partial"}
`)
	}))
	service := NewGenerationService(client, "")

	stream, err := service.ChatStream(context.Background(), driven.ChatStreamRequest{Message: "hi"})
	require.NoError(t, err)
	defer stream.Close()

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "partial", event.Text)

	// The connection ended without a terminal event; the stream just
	// reports EOF and leaves recovery to the caller.
	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestChatStreamErrorStatus(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(apiError{Message: "too many tokens"})
	}))
	service := NewGenerationService(client, "")

	_, err := service.ChatStream(context.Background(), driven.ChatStreamRequest{Message: "hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many tokens")
}

func TestPing(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	assert.NoError(t, client.Ping(context.Background()))
}

func TestPingUnauthorized(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	assert.Error(t, client.Ping(context.Background()))
}
