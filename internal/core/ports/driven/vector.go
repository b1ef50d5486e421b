package driven

import "context"

// VectorIndex provides approximate nearest-neighbour search over the
// embedded corpus. Indexes are built once from the full vector set and are
// immutable afterwards; positions in the build slice are the result ids.
type VectorIndex interface {
	// Search returns up to k hits by similarity, best first. k larger
	// than the corpus is clamped, never an error.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int
}

// VectorHit is one similarity search result.
type VectorHit struct {
	// Position is the index of the vector in the build slice, which is
	// also the position of the document in the loaded corpus.
	Position int

	// Score is the inner-product similarity, higher is better.
	Score float32
}

// IndexBuilder constructs a VectorIndex from a complete embedding set.
// Rebuilding means discarding the old index and building a new one.
type IndexBuilder interface {
	Build(ctx context.Context, vectors [][]float32) (VectorIndex, error)
}
