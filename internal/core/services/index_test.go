package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driven"
)

func testCorpus(n int) []domain.Document {
	docs := make([]domain.Document, n)
	for i := range docs {
		docs[i] = domain.Document{
			ID:    fmt.Sprintf("doc-%d", i),
			Title: "Ecommerce FAQ",
			Text:  fmt.Sprintf("Question: q%d\nAnswer: a%d", i, i),
		}
	}
	return docs
}

func TestSemanticIndexBuildEmptyCorpus(t *testing.T) {
	index := NewSemanticIndex(&mockEmbeddingService{}, &mockIndexBuilder{}, 0)

	err := index.Build(context.Background(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexBuild)
}

func TestSemanticIndexBuildSuccess(t *testing.T) {
	embedder := &mockEmbeddingService{}
	builder := &mockIndexBuilder{}
	index := NewSemanticIndex(embedder, builder, 2)
	docs := testCorpus(5)

	err := index.Build(context.Background(), docs)

	require.NoError(t, err)
	assert.Equal(t, 5, index.Len())
	require.NotNil(t, builder.built)
	assert.Equal(t, 5, builder.built.Len())

	// 5 documents with batch size 2 means 3 embedding calls, all in
	// document mode.
	assert.Equal(t, 3, embedder.callCount())
	assert.Len(t, embedder.callsWith(driven.EmbedInputDocument), 3)
	assert.Empty(t, embedder.callsWith(driven.EmbedInputQuery))
}

func TestSemanticIndexBuildPreservesOrder(t *testing.T) {
	embedder := &mockEmbeddingService{
		vectorFor: func(text string) []float32 {
			// Encode the text so vectors are distinguishable per document.
			return []float32{float32(len(text)), 1}
		},
	}
	builder := &mockIndexBuilder{}
	index := NewSemanticIndex(embedder, builder, 2)

	docs := []domain.Document{
		{ID: "a", Text: "x"},
		{ID: "b", Text: "xx"},
		{ID: "c", Text: "xxx"},
		{ID: "d", Text: "xxxx"},
		{ID: "e", Text: "xxxxx"},
	}
	require.NoError(t, index.Build(context.Background(), docs))

	// Vector at position i must belong to document i regardless of
	// which batch finished first.
	for i, doc := range docs {
		assert.Equal(t, float32(len(doc.Text)), builder.built.vectors[i][0], "position %d", i)
	}
}

func TestSemanticIndexBuildEmbeddingMismatch(t *testing.T) {
	embedder := &mockEmbeddingService{shortBy: 1}
	index := NewSemanticIndex(embedder, &mockIndexBuilder{}, 10)

	err := index.Build(context.Background(), testCorpus(3))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexBuild)
}

func TestSemanticIndexBuildEmbedError(t *testing.T) {
	embedder := &mockEmbeddingService{embedErr: errors.New("provider down")}
	index := NewSemanticIndex(embedder, &mockIndexBuilder{}, 10)

	err := index.Build(context.Background(), testCorpus(3))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexBuild)
}

func TestSemanticIndexSearchClampsK(t *testing.T) {
	index := NewSemanticIndex(&mockEmbeddingService{}, &mockIndexBuilder{}, 10)
	require.NoError(t, index.Build(context.Background(), testCorpus(3)))

	hits, err := index.Search(context.Background(), []float32{1, 1}, 50)

	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestSemanticIndexSearchBeforeBuild(t *testing.T) {
	index := NewSemanticIndex(&mockEmbeddingService{}, &mockIndexBuilder{}, 10)

	_, err := index.Search(context.Background(), []float32{1, 1}, 5)

	assert.Error(t, err)
}

func TestSemanticIndexDocument(t *testing.T) {
	index := NewSemanticIndex(&mockEmbeddingService{}, &mockIndexBuilder{}, 10)
	require.NoError(t, index.Build(context.Background(), testCorpus(3)))

	doc, ok := index.Document(1)
	require.True(t, ok)
	assert.Equal(t, "doc-1", doc.ID)

	_, ok = index.Document(3)
	assert.False(t, ok)

	_, ok = index.Document(-1)
	assert.False(t, ok)
}
