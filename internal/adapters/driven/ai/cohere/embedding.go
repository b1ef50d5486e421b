package cohere

import (
	"context"
	"fmt"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default embedding configuration.
const (
	DefaultEmbedModel = "embed-english-v3.0"

	// MaxEmbedBatch is the API's per-request text limit.
	MaxEmbedBatch = 96
)

// Embedding dimensions for Cohere embed models.
var modelDimensions = map[string]int{
	"embed-english-v3.0":            1024,
	"embed-multilingual-v3.0":       1024,
	"embed-english-light-v3.0":      384,
	"embed-multilingual-light-v3.0": 384,
}

// EmbeddingService generates embeddings using the Cohere embed API.
type EmbeddingService struct {
	client     *Client
	model      string
	dimensions int
}

// NewEmbeddingService creates an embedding service on the shared client.
func NewEmbeddingService(client *Client, model string, dimensions int) *EmbeddingService {
	if model == "" {
		model = DefaultEmbedModel
	}
	if dimensions == 0 {
		var ok bool
		dimensions, ok = modelDimensions[model]
		if !ok {
			dimensions = 1024
		}
	}
	return &EmbeddingService{client: client, model: model, dimensions: dimensions}
}

// embedRequest is the Cohere embed API request format.
type embedRequest struct {
	Model     string   `json:"model"`
	Texts     []string `json:"texts"`
	InputType string   `json:"input_type"`
}

// embedResponse is the Cohere embed API response format.
type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed generates one embedding per text. The input type distinguishes
// corpus documents from search queries; the model embeds them into the
// same space but optimises differently.
func (s *EmbeddingService) Embed(ctx context.Context, texts []string, input driven.EmbedInputType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) > MaxEmbedBatch {
		return nil, fmt.Errorf("cohere: batch of %d texts exceeds limit of %d", len(texts), MaxEmbedBatch)
	}

	var resp embedResponse
	err := s.client.postJSON(ctx, "/embed", embedRequest{
		Model:     s.model,
		Texts:     texts,
		InputType: string(input),
	}, &resp)
	if err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		vec := make([]float32, len(e))
		for d, v := range e {
			vec[d] = float32(v)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
