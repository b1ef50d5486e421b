// Package cohere provides embedding, rerank and generation adapters
// backed by the Cohere v1 API. All three services share one Client so
// they also share its request pacing.
package cohere
