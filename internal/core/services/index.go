package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
	"github.com/YusuphaJuwara/chatbotgermano/internal/logger"
)

// maxConcurrentEmbedBatches caps parallel embedding requests so a large
// corpus does not flood the provider.
const maxConcurrentEmbedBatches = 4

// SemanticIndex embeds a document corpus and serves nearest-neighbour
// lookups over it. Positions in the index correspond to positions in
// the corpus slice passed to Build, not to application document IDs.
type SemanticIndex struct {
	embedder  driven.EmbeddingService
	builder   driven.IndexBuilder
	batchSize int

	index driven.VectorIndex
	docs  []domain.Document
}

// NewSemanticIndex creates an index over vectors produced by embedder.
// batchSize caps how many texts go into a single embedding request.
func NewSemanticIndex(embedder driven.EmbeddingService, builder driven.IndexBuilder, batchSize int) *SemanticIndex {
	if batchSize <= 0 {
		batchSize = domain.DefaultEmbedBatchSize
	}
	return &SemanticIndex{
		embedder:  embedder,
		builder:   builder,
		batchSize: batchSize,
	}
}

// Build embeds all documents in batches and constructs the vector index.
// The corpus must be non-empty. Once Build returns, the index is
// read-only and safe for concurrent searches.
func (s *SemanticIndex) Build(ctx context.Context, docs []domain.Document) error {
	logger.Section("Index Build")

	if len(docs) == 0 {
		return fmt.Errorf("%w: empty corpus", domain.ErrIndexBuild)
	}
	logger.Info("Embedding %d documents (batch size %d)", len(docs), s.batchSize)

	vectors, err := s.embedCorpus(ctx, docs)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexBuild, err)
	}
	if len(vectors) != len(docs) {
		logger.Warn("Embedding count mismatch: %d vectors for %d documents", len(vectors), len(docs))
		return fmt.Errorf("%w: got %d embeddings for %d documents", domain.ErrIndexBuild, len(vectors), len(docs))
	}

	index, err := s.builder.Build(ctx, vectors)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexBuild, err)
	}

	s.index = index
	s.docs = docs
	logger.Info("Index ready: %d vectors, %d dimensions", index.Len(), s.embedder.Dimensions())
	return nil
}

// embedCorpus runs batch embedding requests in parallel and reassembles
// the vectors in corpus order.
func (s *SemanticIndex) embedCorpus(ctx context.Context, docs []domain.Document) ([][]float32, error) {
	vectors := make([][]float32, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEmbedBatches)

	for start := 0; start < len(docs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		start, end := start, end

		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, doc := range docs[start:end] {
				texts = append(texts, doc.Text)
			}

			logger.Debug("Embedding batch [%d:%d]", start, end)
			embeddings, err := s.embedder.Embed(ctx, texts, driven.EmbedInputDocument)
			if err != nil {
				return fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
			}
			if len(embeddings) != len(texts) {
				return fmt.Errorf("embed batch [%d:%d]: got %d embeddings for %d texts", start, end, len(embeddings), len(texts))
			}

			copy(vectors[start:end], embeddings)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Search returns the positions of the k nearest documents to the query
// vector. k is clamped to the corpus size.
func (s *SemanticIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if s.index == nil {
		return nil, fmt.Errorf("index not built")
	}
	if k > s.index.Len() {
		logger.Debug("Clamping k from %d to corpus size %d", k, s.index.Len())
		k = s.index.Len()
	}
	return s.index.Search(ctx, query, k)
}

// Document returns the corpus document at the given index position.
func (s *SemanticIndex) Document(position int) (domain.Document, bool) {
	if position < 0 || position >= len(s.docs) {
		return domain.Document{}, false
	}
	return s.docs[position], true
}

// Len returns the number of indexed documents.
func (s *SemanticIndex) Len() int {
	return len(s.docs)
}
