// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/YusuphaJuwara/chatbotgermano/internal/adapters/driven/ai/cohere"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for provider connectivity validation.
const pingTimeout = 5 * time.Second

// Services bundles the provider-backed services of the retrieval pipeline.
// All three share one HTTP client and rate limiter.
type Services struct {
	Embedding  driven.EmbeddingService
	Rerank     driven.RerankService
	Generation driven.GenerationService
}

// Close releases the resources held by the services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.Rerank != nil {
		s.Rerank.Close()
	}
	if s.Generation != nil {
		s.Generation.Close()
	}
}

// CreateAndValidateServices creates the Cohere-backed services and
// validates connectivity. Returns an error with guidance when the
// provider is not configured or unreachable.
func CreateAndValidateServices(settings *domain.ProviderSettings) (*Services, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: set COHERE_API_KEY or provider.api_key",
			domain.ErrGenerationUnavailable)
	}

	client, err := cohere.NewClient(cohere.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating provider client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("provider unreachable (check the API key and network): %w", err)
	}

	return &Services{
		Embedding:  cohere.NewEmbeddingService(client, settings.EmbedModel, settings.Dimensions),
		Rerank:     cohere.NewRerankService(client, settings.RerankModel),
		Generation: cohere.NewGenerationService(client, settings.ChatModel),
	}, nil
}
