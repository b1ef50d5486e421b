package driven

import "context"

// EmbedInputType selects how the provider optimises the produced vectors.
// Corpus documents and live queries use distinct modes; collapsing them
// degrades retrieval quality, so the mode travels with every call.
type EmbedInputType string

const (
	// EmbedInputDocument marks texts that will be stored and searched over.
	EmbedInputDocument EmbedInputType = "search_document"

	// EmbedInputQuery marks texts used to search the stored corpus.
	EmbedInputQuery EmbedInputType = "search_query"
)

// EmbeddingService converts text into fixed-dimension vectors.
//
// Implementations are hosted APIs with a per-call batch limit; callers are
// responsible for batching corpus embedding below that limit.
type EmbeddingService interface {
	// Embed generates one vector per input text, in input order.
	Embed(ctx context.Context, texts []string, input EmbedInputType) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
