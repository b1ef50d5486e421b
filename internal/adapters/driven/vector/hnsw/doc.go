// Package hnsw provides an in-memory HNSW vector index over the
// inner-product space. It implements driven.VectorIndex and
// driven.IndexBuilder.
//
// The index is built once from the full vector set and is read-only
// afterwards, so searches need no locking.
package hnsw
