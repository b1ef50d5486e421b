package cohere

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

// Ensure GenerationService implements the interface.
var _ driven.GenerationService = (*GenerationService)(nil)

// DefaultChatModel is the generation model used when none is configured.
const DefaultChatModel = "command-r"

// Cohere chat history roles.
const (
	roleUser    = "USER"
	roleChatbot = "CHATBOT"
)

// GenerationService runs planning and streamed chat calls against the
// Cohere chat API.
type GenerationService struct {
	client *Client
	model  string
}

// NewGenerationService creates a generation service on the shared client.
func NewGenerationService(client *Client, model string) *GenerationService {
	if model == "" {
		model = DefaultChatModel
	}
	return &GenerationService{client: client, model: model}
}

// chatMessage is a history entry in the Cohere chat request and response.
type chatMessage struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// chatRequest is the Cohere chat API request format.
type chatRequest struct {
	Model             string                  `json:"model"`
	Message           string                  `json:"message"`
	Preamble          string                  `json:"preamble,omitempty"`
	ChatHistory       []chatMessage           `json:"chat_history,omitempty"`
	Documents         []domain.RetrievedChunk `json:"documents,omitempty"`
	SearchQueriesOnly bool                    `json:"search_queries_only,omitempty"`
	Stream            bool                    `json:"stream,omitempty"`
}

// planResponse is the non-streamed chat response used for planning.
type planResponse struct {
	Text          string `json:"text"`
	SearchQueries []struct {
		Text string `json:"text"`
	} `json:"search_queries"`
}

// Plan asks the model which searches the message needs, without
// generating a response.
func (s *GenerationService) Plan(ctx context.Context, message, preamble string, history []domain.ChatMessage) (*driven.PlanResult, error) {
	var resp planResponse
	err := s.client.postJSON(ctx, "/chat", chatRequest{
		Model:             s.model,
		Message:           message,
		Preamble:          preamble,
		ChatHistory:       toAPIHistory(history),
		SearchQueriesOnly: true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	result := &driven.PlanResult{Text: resp.Text}
	for _, q := range resp.SearchQueries {
		if q.Text != "" {
			result.SearchQueries = append(result.SearchQueries, q.Text)
		}
	}
	return result, nil
}

// ChatStream starts a streamed chat call. The caller must Close the
// returned stream.
func (s *GenerationService) ChatStream(ctx context.Context, req driven.ChatStreamRequest) (driven.ChatStream, error) {
	body, err := s.client.postStream(ctx, "/chat", chatRequest{
		Model:       s.model,
		Message:     req.Message,
		Preamble:    req.Preamble,
		ChatHistory: toAPIHistory(req.History),
		Documents:   req.Documents,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}
	return newChatStream(body), nil
}

// ModelName returns the name of the generation model being used.
func (s *GenerationService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable.
func (s *GenerationService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close releases resources.
func (s *GenerationService) Close() error {
	return nil
}

// streamEvent is one newline-delimited JSON event in a streamed chat
// response.
type streamEvent struct {
	EventType string `json:"event_type"`
	Text      string `json:"text"`
	Response  *struct {
		Citations []struct {
			Start       int      `json:"start"`
			End         int      `json:"end"`
			Text        string   `json:"text"`
			DocumentIDs []string `json:"document_ids"`
		} `json:"citations"`
		Documents   []domain.RetrievedChunk `json:"documents"`
		ChatHistory []chatMessage           `json:"chat_history"`
	} `json:"response"`
}

// chatStream decodes the event stream. Recv returns io.EOF once the
// terminal event has been delivered.
type chatStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func newChatStream(body io.ReadCloser) *chatStream {
	scanner := bufio.NewScanner(body)
	// Terminal events carry the full response and can outgrow the
	// default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &chatStream{body: body, scanner: scanner}
}

// Recv returns the next relevant event. Events other than text
// fragments and the terminal event are skipped.
func (s *chatStream) Recv() (*driven.StreamEvent, error) {
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("decode stream event: %w", err)
		}

		switch event.EventType {
		case string(driven.EventTextFragment):
			return &driven.StreamEvent{Type: driven.EventTextFragment, Text: event.Text}, nil

		case string(driven.EventStreamEnd):
			s.done = true
			out := &driven.StreamEvent{Type: driven.EventStreamEnd}
			if event.Response != nil {
				out.Documents = event.Response.Documents
				out.History = fromAPIHistory(event.Response.ChatHistory)
				for _, c := range event.Response.Citations {
					out.Citations = append(out.Citations, domain.Citation{
						Start:       c.Start,
						End:         c.End,
						Text:        c.Text,
						DocumentIDs: c.DocumentIDs,
					})
				}
			}
			return out, nil
		}
	}

	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return nil, io.EOF
}

// Close releases the underlying connection.
func (s *chatStream) Close() error {
	return s.body.Close()
}

func toAPIHistory(history []domain.ChatMessage) []chatMessage {
	if len(history) == 0 {
		return nil
	}
	out := make([]chatMessage, len(history))
	for i, msg := range history {
		role := roleUser
		if msg.Role == domain.RoleAssistant {
			role = roleChatbot
		}
		out[i] = chatMessage{Role: role, Message: msg.Content}
	}
	return out
}

func fromAPIHistory(history []chatMessage) []domain.ChatMessage {
	if len(history) == 0 {
		return nil
	}
	out := make([]domain.ChatMessage, len(history))
	for i, msg := range history {
		role := domain.RoleUser
		if msg.Role == roleChatbot {
			role = domain.RoleAssistant
		}
		out[i] = domain.ChatMessage{Role: role, Content: msg.Message}
	}
	return out
}
