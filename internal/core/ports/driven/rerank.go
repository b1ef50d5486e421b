package driven

import (
	"context"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
)

// RerankService scores a small candidate set against a query with a model
// more accurate (and more expensive) than dense retrieval. Rerank scores
// are authoritative for final ordering; dense-retrieval scores are
// discarded once candidates reach this pass.
type RerankService interface {
	// Rerank orders candidates by relevance to the query, considering only
	// the named document fields, and returns at most topN results.
	Rerank(ctx context.Context, query string, docs []domain.Document, fields []string, topN int) ([]RerankResult, error)

	// ModelName returns the name of the rerank model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// RerankResult is one reranked candidate.
type RerankResult struct {
	// Index points into the candidate slice passed to Rerank.
	Index int

	// RelevanceScore is the rerank model's score, higher is better.
	RelevanceScore float64
}
