package domain

// Document is one entry of the knowledge corpus. The corpus is loaded once
// at startup and is immutable for the process lifetime; the position of a
// document in the loaded slice is its identity inside the semantic index.
type Document struct {
	// ID is the identifier the corpus source declared for this document.
	// It is carried for lookups but is NOT the index key; the index is
	// keyed by position.
	ID string

	// Title is the human-readable title.
	Title string

	// Text is the content that gets embedded and ranked.
	Text string

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any
}

// RetrievedChunk is a document that survived dense retrieval and reranking.
// It never carries the raw embedding.
type RetrievedChunk struct {
	// Title of the source document.
	Title string `json:"title"`

	// Text of the source document.
	Text string `json:"text"`

	// ID is the stringified corpus position of the source document.
	ID string `json:"id"`

	// RelevanceScore is the rerank score, formatted as a string so it
	// round-trips unchanged through grounding payloads.
	RelevanceScore string `json:"relevance_score"`
}
