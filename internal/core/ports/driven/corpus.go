package driven

import (
	"context"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
)

// CorpusLoader supplies the document corpus the semantic index is built
// over. Loading happens once, synchronously, at process start; the loaded
// slice is immutable afterwards and its positions are the index keys.
type CorpusLoader interface {
	Load(ctx context.Context) ([]domain.Document, error)
}
