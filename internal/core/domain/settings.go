package domain

// Default pipeline parameters. These mirror the values the retrieval
// pipeline was tuned with; overrides come from the config file.
const (
	// DefaultRetrieveTopK is the candidate count of the dense first pass.
	DefaultRetrieveTopK = 10

	// DefaultRerankTopK is how many candidates survive the rerank pass.
	DefaultRerankTopK = 3

	// DefaultEmbedBatchSize stays under the embedding endpoint's
	// 96-items-per-call limit.
	DefaultEmbedBatchSize = 90

	// DefaultEmbedDimensions is the vector size of the embed-v3 models.
	DefaultEmbedDimensions = 1024

	// DefaultEfConstruction controls index build effort. Higher values
	// improve recall at the cost of slower builds.
	DefaultEfConstruction = 512

	// DefaultMaxConnections (M) is the per-node link budget of the HNSW
	// graph. Larger values increase accuracy and memory usage.
	DefaultMaxConnections = 64
)

// ProviderSettings configures the hosted AI provider.
type ProviderSettings struct {
	// APIKey authenticates every provider call. Required.
	APIKey string

	// BaseURL overrides the provider endpoint; empty means the default.
	BaseURL string

	// EmbedModel is the embedding model name.
	EmbedModel string

	// RerankModel is the rerank model name.
	RerankModel string

	// ChatModel is the generation model name.
	ChatModel string

	// Dimensions is the embedding vector size.
	Dimensions int
}

// IsConfigured returns true if the provider can be constructed.
func (p *ProviderSettings) IsConfigured() bool {
	return p != nil && p.APIKey != ""
}

// RetrievalSettings configures the two-stage retrieval pipeline.
type RetrievalSettings struct {
	// RetrieveTopK is the dense-retrieval candidate count.
	RetrieveTopK int

	// RerankTopK is the rerank result count.
	RerankTopK int

	// EmbedBatchSize is the per-call cap when embedding the corpus.
	EmbedBatchSize int
}

// IndexSettings configures HNSW graph construction.
type IndexSettings struct {
	// EfConstruction is the build-time beam width.
	EfConstruction int

	// MaxConnections is the bidirectional link count per node.
	MaxConnections int
}

// Settings aggregates the full application configuration.
type Settings struct {
	Provider  ProviderSettings
	Retrieval RetrievalSettings
	Index     IndexSettings

	// CorpusPath points at a JSON corpus file; empty means the embedded
	// default corpus.
	CorpusPath string

	// DataDir holds the sqlite database; empty means ~/.germano/data.
	// The special value "memory" keeps sessions in memory only.
	DataDir string

	// ListenAddr is the HTTP API bind address.
	ListenAddr string

	// AIModelLabel is recorded on persisted assistant messages.
	AIModelLabel string
}

// ApplyDefaults fills zero-valued tuning parameters with the defaults
// above. Returns the settings for chaining.
func (s *Settings) ApplyDefaults() *Settings {
	if s.Retrieval.RetrieveTopK <= 0 {
		s.Retrieval.RetrieveTopK = DefaultRetrieveTopK
	}
	if s.Retrieval.RerankTopK <= 0 {
		s.Retrieval.RerankTopK = DefaultRerankTopK
	}
	if s.Retrieval.EmbedBatchSize <= 0 {
		s.Retrieval.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if s.Provider.Dimensions <= 0 {
		s.Provider.Dimensions = DefaultEmbedDimensions
	}
	if s.Index.EfConstruction <= 0 {
		s.Index.EfConstruction = DefaultEfConstruction
	}
	if s.Index.MaxConnections <= 0 {
		s.Index.MaxConnections = DefaultMaxConnections
	}
	if s.ListenAddr == "" {
		s.ListenAddr = ":8000"
	}
	return s
}

// Validate reports whether the settings can run the full pipeline.
func (s *Settings) Validate() error {
	if !s.Provider.IsConfigured() {
		return ErrGenerationUnavailable
	}
	if s.Retrieval.RetrieveTopK < s.Retrieval.RerankTopK {
		return ErrInvalidInput
	}
	return nil
}
