package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driving"
	"github.com/YusuphaJuwara/chatbotgermano/internal/logger"
)

// Ensure ChatEngine implements the interface.
var _ driving.ChatService = (*ChatEngine)(nil)

// ChatEngine runs grounded conversation turns: plan search queries,
// retrieve supporting passages, stream the answer and collect its
// citations. One engine holds one conversation; turns are serialised.
type ChatEngine struct {
	generator driven.GenerationService
	retriever *Retriever
	prompts   driven.PromptStore

	mu      sync.Mutex
	busy    bool
	history []domain.ChatMessage
}

// NewChatEngine creates an engine with an empty conversation history.
func NewChatEngine(generator driven.GenerationService, retriever *Retriever, prompts driven.PromptStore) *ChatEngine {
	return &ChatEngine{
		generator: generator,
		retriever: retriever,
		prompts:   prompts,
	}
}

// Chat runs one full turn for the user message. If a turn is already
// in flight the call fails immediately with ErrTurnInProgress rather
// than queueing.
func (e *ChatEngine) Chat(ctx context.Context, message string) (*domain.ChatResult, error) {
	history, err := e.acquire()
	if err != nil {
		return nil, err
	}
	defer e.release()

	logger.Section("Chat Turn")
	logger.Debug("User message: %q", message)

	queries, err := e.planQueries(ctx, message, history)
	if err != nil {
		return nil, err
	}

	var documents []domain.RetrievedChunk
	if len(queries) > 0 {
		documents, err = e.retriever.RetrieveAll(ctx, queries)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Info("No search queries planned, answering without retrieval")
	}

	result, updated, err := e.generate(ctx, message, documents, history)
	if err != nil {
		return nil, err
	}

	e.setHistory(updated)
	logger.Debug("Turn complete: %d chars, %d citations, %d documents",
		len(result.Text), len(result.Citations), len(result.Documents))
	return result, nil
}

// NewChat discards the conversation history.
func (e *ChatEngine) NewChat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = nil
}

// History returns a copy of the current conversation history.
func (e *ChatEngine) History() []domain.ChatMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.ChatMessage(nil), e.history...)
}

// acquire marks a turn in flight and returns a snapshot of the history
// for it to work against.
func (e *ChatEngine) acquire() ([]domain.ChatMessage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return nil, domain.ErrTurnInProgress
	}
	e.busy = true
	return append([]domain.ChatMessage(nil), e.history...), nil
}

func (e *ChatEngine) release() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

func (e *ChatEngine) setHistory(history []domain.ChatMessage) {
	e.mu.Lock()
	e.history = history
	e.mu.Unlock()
}

// planQueries asks the model which searches the message needs. Zero
// queries means the turn is conversational (a greeting, small talk)
// and retrieval is skipped.
func (e *ChatEngine) planQueries(ctx context.Context, message string, history []domain.ChatMessage) ([]string, error) {
	preamble, err := e.prompts.Load(driven.PromptSearchQueries)
	if err != nil {
		return nil, fmt.Errorf("load planning prompt: %w", err)
	}

	plan, err := e.generator.Plan(ctx, message, preamble, history)
	if err != nil {
		return nil, fmt.Errorf("%w: plan queries: %w", domain.ErrGeneration, err)
	}

	queries := plan.SearchQueries
	if len(queries) == 0 && strings.TrimSpace(plan.Text) != "" {
		// Some models answer in plain text instead of the structured
		// query field; treat each non-empty line as a query.
		for _, line := range strings.Split(plan.Text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				queries = append(queries, line)
			}
		}
		logger.Debug("Plan fell back to text parsing: %d queries", len(queries))
	}

	logger.Info("Planned %d search queries", len(queries))
	for _, q := range queries {
		logger.Debug("  query: %q", q)
	}
	return queries, nil
}

// generate streams the answer and returns the final result together
// with the updated conversation history.
func (e *ChatEngine) generate(
	ctx context.Context, message string, documents []domain.RetrievedChunk, history []domain.ChatMessage,
) (*domain.ChatResult, []domain.ChatMessage, error) {
	preamble, err := e.prompts.Load(driven.PromptAnswerSystem)
	if err != nil {
		return nil, nil, fmt.Errorf("load answer prompt: %w", err)
	}

	stream, err := e.generator.ChatStream(ctx, driven.ChatStreamRequest{
		Message:   message,
		Preamble:  preamble,
		Documents: documents,
		History:   history,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open stream: %w", domain.ErrGeneration, err)
	}
	defer stream.Close()

	var text strings.Builder
	var terminal *driven.StreamEvent

	for {
		event, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: stream: %w", domain.ErrGeneration, err)
		}

		switch event.Type {
		case driven.EventTextFragment:
			text.WriteString(event.Text)
		case driven.EventStreamEnd:
			terminal = event
		}
	}

	result := &domain.ChatResult{Text: text.String()}

	if terminal != nil {
		result.Citations = validCitations(terminal.Citations, len(result.Text))
		result.Documents = terminal.Documents
		if len(terminal.History) > 0 {
			// The provider returns the full updated history; replace
			// ours wholesale rather than appending.
			history = terminal.History
		} else {
			history = appendTurn(history, message, result.Text)
		}
	} else {
		logger.Warn("Stream ended without a terminal event, returning text without citations")
		result.Citations = []domain.Citation{}
		result.Documents = []domain.RetrievedChunk{}
		history = appendTurn(history, message, result.Text)
	}

	return result, history, nil
}

// validCitations drops citations whose spans do not fit the response
// text. Spans are half-open byte offsets.
func validCitations(citations []domain.Citation, textLen int) []domain.Citation {
	valid := make([]domain.Citation, 0, len(citations))
	for _, c := range citations {
		if c.Start < 0 || c.End < c.Start || c.End > textLen {
			logger.Warn("Dropping citation with invalid span [%d:%d] for %d-char text", c.Start, c.End, textLen)
			continue
		}
		valid = append(valid, c)
	}
	return valid
}

func appendTurn(history []domain.ChatMessage, userMessage, assistantText string) []domain.ChatMessage {
	updated := append(append([]domain.ChatMessage(nil), history...),
		domain.ChatMessage{Role: domain.RoleUser, Content: userMessage})
	if assistantText != "" {
		updated = append(updated, domain.ChatMessage{Role: domain.RoleAssistant, Content: assistantText})
	}
	return updated
}
