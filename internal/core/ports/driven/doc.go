// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the AI capability providers, the vector
// index, and the persistence stores the chat engine depends on.
package driven
