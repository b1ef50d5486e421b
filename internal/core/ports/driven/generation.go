package driven

import (
	"context"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
)

// GenerationService is the language model behind the chat engine. It is
// used in two modes: a constrained planning call that only produces search
// queries, and a streaming generation call that produces the grounded (or
// ungrounded) response.
type GenerationService interface {
	// Plan asks the model whether the message needs retrieval. The result
	// carries zero or more explicit search queries; when the model returns
	// none it may still emit free text that callers can fall back to.
	Plan(ctx context.Context, message, preamble string, history []domain.ChatMessage) (*PlanResult, error)

	// ChatStream starts a streaming generation call. The returned stream
	// must be closed by the caller, also on early abandonment, so the
	// provider-side connection is released.
	ChatStream(ctx context.Context, req ChatStreamRequest) (ChatStream, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// PlanResult is the outcome of a planning call.
type PlanResult struct {
	// SearchQueries are the structured queries the model produced.
	SearchQueries []string

	// Text is the model's free-text output, non-empty only when no
	// structured queries were returned.
	Text string
}

// ChatStreamRequest configures one streaming generation call.
type ChatStreamRequest struct {
	// Message is the current user message.
	Message string

	// Preamble is the system instruction.
	Preamble string

	// Documents ground the response; nil for an ungrounded call.
	Documents []domain.RetrievedChunk

	// History is the prior conversation, threaded through unchanged.
	History []domain.ChatMessage
}

// StreamEventType discriminates generation stream events.
type StreamEventType string

const (
	// EventTextFragment carries an incremental piece of response text.
	EventTextFragment StreamEventType = "text-generation"

	// EventStreamEnd is the terminal event carrying citations, used
	// documents and the updated history.
	EventStreamEnd StreamEventType = "stream-end"
)

// StreamEvent is one event of a generation stream. Only the fields for
// the event's Type are populated.
type StreamEvent struct {
	Type StreamEventType

	// Text is set for EventTextFragment.
	Text string

	// Citations, Documents and History are set for EventStreamEnd.
	// Any of them may be empty when the provider omitted the field.
	Citations []domain.Citation
	Documents []domain.RetrievedChunk
	History   []domain.ChatMessage
}

// ChatStream yields generation events in delivery order.
type ChatStream interface {
	// Recv returns the next event, or io.EOF after the terminal event.
	Recv() (*StreamEvent, error)

	// Close releases the underlying connection. Safe to call twice.
	Close() error
}
