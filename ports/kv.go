package ports

// KVStore is the opaque persistence surface the history store runs on.
// Backends may be a file tree, an embedded database, or memory; the
// history layer never sees which.
type KVStore interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)
	// Set stores a value, overwriting any previous one.
	Set(key string, value []byte) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(key string) error
}
