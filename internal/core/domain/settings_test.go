package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_ApplyDefaults(t *testing.T) {
	s := (&Settings{}).ApplyDefaults()

	assert.Equal(t, DefaultRetrieveTopK, s.Retrieval.RetrieveTopK)
	assert.Equal(t, DefaultRerankTopK, s.Retrieval.RerankTopK)
	assert.Equal(t, DefaultEmbedBatchSize, s.Retrieval.EmbedBatchSize)
	assert.Equal(t, DefaultEmbedDimensions, s.Provider.Dimensions)
	assert.Equal(t, DefaultEfConstruction, s.Index.EfConstruction)
	assert.Equal(t, DefaultMaxConnections, s.Index.MaxConnections)
	assert.Equal(t, ":8000", s.ListenAddr)
}

func TestSettings_ApplyDefaults_KeepsOverrides(t *testing.T) {
	s := (&Settings{
		Retrieval: RetrievalSettings{RetrieveTopK: 20, RerankTopK: 5, EmbedBatchSize: 16},
		Index:     IndexSettings{EfConstruction: 128, MaxConnections: 16},
	}).ApplyDefaults()

	assert.Equal(t, 20, s.Retrieval.RetrieveTopK)
	assert.Equal(t, 5, s.Retrieval.RerankTopK)
	assert.Equal(t, 16, s.Retrieval.EmbedBatchSize)
	assert.Equal(t, 128, s.Index.EfConstruction)
	assert.Equal(t, 16, s.Index.MaxConnections)
}

func TestSettings_Validate(t *testing.T) {
	s := (&Settings{Provider: ProviderSettings{APIKey: "key"}}).ApplyDefaults()
	require.NoError(t, s.Validate())

	missingKey := (&Settings{}).ApplyDefaults()
	assert.ErrorIs(t, missingKey.Validate(), ErrGenerationUnavailable)

	inverted := (&Settings{Provider: ProviderSettings{APIKey: "key"}}).ApplyDefaults()
	inverted.Retrieval.RetrieveTopK = 2
	inverted.Retrieval.RerankTopK = 5
	assert.ErrorIs(t, inverted.Validate(), ErrInvalidInput)
}

func TestProviderSettings_IsConfigured(t *testing.T) {
	var nilSettings *ProviderSettings
	assert.False(t, nilSettings.IsConfigured())
	assert.False(t, (&ProviderSettings{}).IsConfigured())
	assert.True(t, (&ProviderSettings{APIKey: "key"}).IsConfigured())
}
