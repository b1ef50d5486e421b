// Command germano is a retrieval-augmented chat assistant for ecommerce
// FAQs. It wires the Cohere provider, the HNSW index and the sqlite
// session store into the CLI, following hexagonal architecture: this is
// the only place where adapters meet the core.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/YusuphaJuwara/chatbotgermano/internal/adapters/driven/ai"
	configfile "github.com/YusuphaJuwara/chatbotgermano/internal/adapters/driven/config/file"
	corpusfile "github.com/YusuphaJuwara/chatbotgermano/internal/adapters/driven/corpus/file"
	"github.com/YusuphaJuwara/chatbotgermano/internal/adapters/driven/storage/memory"
	"github.com/YusuphaJuwara/chatbotgermano/internal/adapters/driven/storage/sqlite"
	"github.com/YusuphaJuwara/chatbotgermano/internal/adapters/driven/vector/hnsw"
	"github.com/YusuphaJuwara/chatbotgermano/internal/adapters/driving/cli"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/services"
	"github.com/YusuphaJuwara/chatbotgermano/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// The API key is normally supplied through the environment; a .env
	// file in the working directory is honoured for development.
	_ = godotenv.Load()

	cli.SetVersion(version)

	// version, help and completion work without a configured provider.
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "help", "-h", "--help", "completion":
			return cli.Execute()
		}
	}

	configStore, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	settings := configfile.LoadSettings(configStore)
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("configuration: %w (set %s or provider.api_key in %s)",
			err, "COHERE_API_KEY", configStore.Path())
	}

	provider, err := ai.CreateAndValidateServices(&settings.Provider)
	if err != nil {
		return err
	}
	defer provider.Close()
	embedder := provider.Embedding
	reranker := provider.Rerank
	generator := provider.Generation

	ctx := context.Background()

	prompts, err := configfile.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}

	corpus, err := corpusfile.NewLoader(settings.CorpusPath).Load(ctx)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}

	builder := hnsw.NewBuilder(hnsw.Config{
		EfConstruction: settings.Index.EfConstruction,
		MaxConnections: settings.Index.MaxConnections,
	})
	index := services.NewSemanticIndex(embedder, builder, settings.Retrieval.EmbedBatchSize)

	start := time.Now()
	if err := index.Build(ctx, corpus); err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	logger.Info("indexed %d documents in %s", index.Len(), time.Since(start).Round(time.Millisecond))

	retriever := services.NewRetriever(index, embedder, reranker, settings.Retrieval)
	newEngine := func() *services.ChatEngine {
		return services.NewChatEngine(generator, retriever, prompts)
	}

	// "memory" keeps sessions for the process lifetime only.
	var store driven.ChatStore
	if settings.DataDir == "memory" {
		store = memory.NewChatStore()
	} else {
		sqlStore, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return fmt.Errorf("opening session store: %w", err)
		}
		defer sqlStore.Close()
		store = sqlStore
	}

	sessions := services.NewSessions(store, newEngine, generator.ModelName())

	cli.SetServices(newEngine(), sessions)
	cli.SetServeConfig(&cli.ServeConfig{
		Sessions:      sessions,
		Corpus:        index,
		PromptWatcher: prompts.Watch,
		ListenAddr:    settings.ListenAddr,
	})

	return cli.Execute()
}
