// Package tui provides an interactive terminal chat interface for germano.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat drives the conversation.
	Chat driving.ChatService
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
