// Package domain contains the core business entities for Chatbot Germano:
// documents, retrieved chunks, chat messages, citations and the error
// taxonomy shared by services and adapters.
//
// Domain types have no dependencies on adapters or external services.
package domain
