package cohere

import (
	"context"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

// Ensure RerankService implements the interface.
var _ driven.RerankService = (*RerankService)(nil)

// DefaultRerankModel is the rerank model used when none is configured.
const DefaultRerankModel = "rerank-english-v3.0"

// RerankService reorders retrieved documents using the Cohere rerank API.
type RerankService struct {
	client *Client
	model  string
}

// NewRerankService creates a rerank service on the shared client.
func NewRerankService(client *Client, model string) *RerankService {
	if model == "" {
		model = DefaultRerankModel
	}
	return &RerankService{client: client, model: model}
}

// rerankDocument is a candidate in the Cohere rerank request.
type rerankDocument struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// rerankRequest is the Cohere rerank API request format.
type rerankRequest struct {
	Model      string           `json:"model"`
	Query      string           `json:"query"`
	Documents  []rerankDocument `json:"documents"`
	TopN       int              `json:"top_n"`
	RankFields []string         `json:"rank_fields,omitempty"`
}

// rerankResponse is the Cohere rerank API response format.
type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank scores docs against the query and returns the top n results,
// best first. Result indices refer to positions in docs.
func (s *RerankService) Rerank(ctx context.Context, query string, docs []domain.Document, fields []string, topN int) ([]driven.RerankResult, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	candidates := make([]rerankDocument, len(docs))
	for i, doc := range docs {
		candidates[i] = rerankDocument{Title: doc.Title, Text: doc.Text}
	}

	var resp rerankResponse
	err := s.client.postJSON(ctx, "/rerank", rerankRequest{
		Model:      s.model,
		Query:      query,
		Documents:  candidates,
		TopN:       topN,
		RankFields: fields,
	}, &resp)
	if err != nil {
		return nil, err
	}

	results := make([]driven.RerankResult, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = driven.RerankResult{Index: r.Index, RelevanceScore: r.RelevanceScore}
	}
	return results, nil
}

// ModelName returns the name of the rerank model being used.
func (s *RerankService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable.
func (s *RerankService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close releases resources.
func (s *RerankService) Close() error {
	return nil
}
