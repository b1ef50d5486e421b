package file

import (
	"os"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

// Config keys, dot-notation into the TOML tables.
const (
	keyAPIKey      = "provider.api_key"
	keyBaseURL     = "provider.base_url"
	keyEmbedModel  = "provider.embed_model"
	keyRerankModel = "provider.rerank_model"
	keyChatModel   = "provider.chat_model"
	keyDimensions  = "provider.dimensions"

	keyRetrieveTopK   = "retrieval.retrieve_top_k"
	keyRerankTopK     = "retrieval.rerank_top_k"
	keyEmbedBatchSize = "retrieval.embed_batch_size"

	keyEfConstruction = "index.ef_construction"
	keyMaxConnections = "index.max_connections"

	keyCorpusPath = "corpus.path"
	keyDataDir    = "storage.data_dir"
	keyListenAddr = "server.listen_addr"
)

// envAPIKey overrides the config-file API key; this is how the key is
// normally supplied (via the environment or a .env file).
const envAPIKey = "COHERE_API_KEY"

// LoadSettings assembles application settings from the config store,
// with environment overrides, and applies defaults.
func LoadSettings(store driven.ConfigStore) *domain.Settings {
	settings := &domain.Settings{
		Provider: domain.ProviderSettings{
			APIKey:      store.GetString(keyAPIKey),
			BaseURL:     store.GetString(keyBaseURL),
			EmbedModel:  store.GetString(keyEmbedModel),
			RerankModel: store.GetString(keyRerankModel),
			ChatModel:   store.GetString(keyChatModel),
			Dimensions:  store.GetInt(keyDimensions),
		},
		Retrieval: domain.RetrievalSettings{
			RetrieveTopK:   store.GetInt(keyRetrieveTopK),
			RerankTopK:     store.GetInt(keyRerankTopK),
			EmbedBatchSize: store.GetInt(keyEmbedBatchSize),
		},
		Index: domain.IndexSettings{
			EfConstruction: store.GetInt(keyEfConstruction),
			MaxConnections: store.GetInt(keyMaxConnections),
		},
		CorpusPath: store.GetString(keyCorpusPath),
		DataDir:    store.GetString(keyDataDir),
		ListenAddr: store.GetString(keyListenAddr),
	}

	if key := os.Getenv(envAPIKey); key != "" {
		settings.Provider.APIKey = key
	}

	return settings.ApplyDefaults()
}
