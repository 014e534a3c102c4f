package kv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"visioncheck/ports"
)

// backendContract exercises the KVStore semantics every backend must share.
func backendContract(t *testing.T, store ports.KVStore) {
	t.Helper()

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set("history", []byte(`[{"id":"a"}]`)))
	value, ok, err := store.Get("history")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"a"}]`, string(value))

	require.NoError(t, store.Set("history", []byte(`[]`)))
	value, ok, err = store.Get("history")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[]`, string(value))

	require.NoError(t, store.Delete("history"))
	_, ok, err = store.Get("history")
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete("history"))
}

func TestMemoryStore(t *testing.T) {
	backendContract(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	value := []byte("original")
	require.NoError(t, store.Set("k", value))
	value[0] = 'X'

	got, ok, err := store.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "original", string(got))

	got[0] = 'Y'
	again, _, _ := store.Get("k")
	require.Equal(t, "original", string(again))
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	backendContract(t, store)
}

func TestFileStoreEscapesKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("../escape", []byte("x")))
	value, ok, err := store.Get("../escape")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "x", string(value))

	// Nothing may be written outside the base directory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer store.Close()

	backendContract(t, store)
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("history", []byte("persisted")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get("history")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "persisted", string(value))
}
