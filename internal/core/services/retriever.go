package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
	"github.com/YusuphaJuwara/chatbotgermano/internal/logger"
)

// rerankFields are the document fields the reranker scores against.
var rerankFields = []string{"title", "text"}

// Retriever answers search queries against a built SemanticIndex:
// embed the query, take the top-k nearest documents, rerank them and
// keep the best few.
type Retriever struct {
	index        *SemanticIndex
	embedder     driven.EmbeddingService
	reranker     driven.RerankService
	retrieveTopK int
	rerankTopK   int
}

// NewRetriever creates a retriever over index. Non-positive top-k
// values fall back to the defaults.
func NewRetriever(index *SemanticIndex, embedder driven.EmbeddingService, reranker driven.RerankService, retrieval domain.RetrievalSettings) *Retriever {
	retrieveTopK := retrieval.RetrieveTopK
	if retrieveTopK <= 0 {
		retrieveTopK = domain.DefaultRetrieveTopK
	}
	rerankTopK := retrieval.RerankTopK
	if rerankTopK <= 0 {
		rerankTopK = domain.DefaultRerankTopK
	}
	return &Retriever{
		index:        index,
		embedder:     embedder,
		reranker:     reranker,
		retrieveTopK: retrieveTopK,
		rerankTopK:   rerankTopK,
	}
}

// Retrieve returns the reranked top passages for a single query.
// Chunk IDs are index positions, so identical passages retrieved by
// different queries carry the same ID.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error) {
	logger.Debug("Retrieve: query=%q", query)

	embeddings, err := r.embedder.Embed(ctx, []string{query}, driven.EmbedInputQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrieval, err)
	}
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("%w: got %d embeddings for one query", domain.ErrRetrieval, len(embeddings))
	}

	hits, err := r.index.Search(ctx, embeddings[0], r.retrieveTopK)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %w", domain.ErrRetrieval, err)
	}
	logger.Debug("Retrieve: %d nearest neighbours", len(hits))
	if len(hits) == 0 {
		return nil, nil
	}

	// Candidates keep the hit order; the reranker result indexes into
	// this slice.
	candidates := make([]domain.Document, len(hits))
	for i, hit := range hits {
		doc, ok := r.index.Document(hit.Position)
		if !ok {
			return nil, fmt.Errorf("%w: index position %d out of range", domain.ErrRetrieval, hit.Position)
		}
		candidates[i] = domain.Document{
			ID:    strconv.Itoa(hit.Position),
			Title: doc.Title,
			Text:  doc.Text,
		}
	}

	ranked, err := r.reranker.Rerank(ctx, query, candidates, rerankFields, r.rerankTopK)
	if err != nil {
		return nil, fmt.Errorf("%w: rerank: %w", domain.ErrRetrieval, err)
	}

	chunks := make([]domain.RetrievedChunk, 0, len(ranked))
	for _, res := range ranked {
		if res.Index < 0 || res.Index >= len(candidates) {
			return nil, fmt.Errorf("%w: rerank index %d out of range", domain.ErrRetrieval, res.Index)
		}
		doc := candidates[res.Index]
		chunks = append(chunks, domain.RetrievedChunk{
			Title:          doc.Title,
			Text:           doc.Text,
			ID:             doc.ID,
			RelevanceScore: strconv.FormatFloat(res.RelevanceScore, 'f', -1, 64),
		})
	}
	logger.Debug("Retrieve: kept %d passages after rerank", len(chunks))
	return chunks, nil
}

// RetrieveAll runs Retrieve for each query and merges the results,
// dropping duplicate chunk IDs. The first occurrence of a chunk wins,
// keeping its score from the earliest query that surfaced it.
func (r *Retriever) RetrieveAll(ctx context.Context, queries []string) ([]domain.RetrievedChunk, error) {
	var merged []domain.RetrievedChunk
	seen := make(map[string]struct{})

	for _, query := range queries {
		chunks, err := r.Retrieve(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, chunk := range chunks {
			if _, ok := seen[chunk.ID]; ok {
				continue
			}
			seen[chunk.ID] = struct{}{}
			merged = append(merged, chunk)
		}
	}

	logger.Info("Retrieved %d unique passages for %d queries", len(merged), len(queries))
	return merged, nil
}
