package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pipeline Errors.

	// ErrIndexBuild indicates the semantic index could not be built:
	// the corpus was empty or the embedding count did not match the
	// document count. Fatal to process startup.
	ErrIndexBuild = errors.New("index build failed")

	// ErrRetrieval indicates an embedding or rerank call failed while
	// answering a query. Propagates to the caller of the turn; retrieval
	// never silently degrades to an empty result.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrGeneration indicates the planning or generation call failed.
	// Fatal to the turn; the engine performs no retry.
	ErrGeneration = errors.New("generation failed")

	// ErrTurnInProgress indicates a turn is already running against this
	// engine's history. Turns for the same session are strictly serial.
	ErrTurnInProgress = errors.New("turn in progress")

	// Provider Errors.

	// ErrEmbeddingUnavailable indicates the embedding provider is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrRerankUnavailable indicates the rerank provider is not configured.
	ErrRerankUnavailable = errors.New("rerank provider unavailable")

	// ErrGenerationUnavailable indicates the generation provider is not configured.
	ErrGenerationUnavailable = errors.New("generation provider unavailable")
)
