// Package file loads the FAQ corpus from a JSON file. When no path is
// configured it falls back to the embedded default corpus, so the
// assistant works out of the box.
package file

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
	"github.com/YusuphaJuwara/chatbotgermano/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.CorpusLoader = (*Loader)(nil)

// DefaultTitle is the title shared by all FAQ documents. The reranker
// scores the title field too, so it stays constant across the corpus.
const DefaultTitle = "Ecommerce FAQ"

//go:embed faq.json
var defaultCorpus []byte

// faqEntry is one question/answer pair in the corpus file.
type faqEntry struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Loader reads FAQ entries and shapes them into corpus documents.
type Loader struct {
	path string
}

// NewLoader creates a loader for the given corpus file. An empty path
// selects the embedded default corpus.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads the corpus. Document text is the question and answer run
// together so one embedding covers both.
func (l *Loader) Load(_ context.Context) ([]domain.Document, error) {
	data := defaultCorpus
	if l.path != "" {
		var err error
		data, err = os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("read corpus: %w", err)
		}
	}

	var entries []faqEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("corpus is empty")
	}

	docs := make([]domain.Document, len(entries))
	for i, entry := range entries {
		docs[i] = domain.Document{
			ID:    strconv.Itoa(i),
			Title: DefaultTitle,
			Text:  fmt.Sprintf("Question: %s\nAnswer: %s", entry.Question, entry.Answer),
		}
		if entry.Category != "" {
			docs[i].Metadata = map[string]any{"category": entry.Category}
		}
	}

	logger.Info("Loaded %d FAQ documents", len(docs))
	return docs, nil
}
