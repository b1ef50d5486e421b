package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStoreSetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("provider.chat_model", "command-r"))
	require.NoError(t, store.Set("retrieval.rerank_top_k", 5))
	require.NoError(t, store.Set("server.debug", true))

	assert.Equal(t, "command-r", store.GetString("provider.chat_model"))
	assert.Equal(t, 5, store.GetInt("retrieval.rerank_top_k"))
	assert.True(t, store.GetBool("server.debug"))

	_, ok := store.Get("missing.key")
	assert.False(t, ok)
}

func TestConfigStoreWrongTypes(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("key", "not a number"))

	assert.Equal(t, 0, store.GetInt("key"))
	assert.False(t, store.GetBool("key"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set("provider.api_key", "secret"))

	second, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "secret", second.GetString("provider.api_key"))
}

func TestConfigStoreFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[provider]\nchat_model = \"command-r\"\n\n[retrieval]\nretrieve_top_k = 12\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "command-r", store.GetString("provider.chat_model"))
	assert.Equal(t, 12, store.GetInt("retrieval.retrieve_top_k"))
}

func TestConfigStoreMissingFileStartsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("anything")
	assert.False(t, ok)
}
