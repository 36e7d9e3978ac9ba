// Package kvstore provides the string-keyed persistent store used for
// identity and session state.
//
// Two backends are provided: MemoryStore for tests and ephemeral use, and
// SQLiteStore for durable storage. Each SQLiteStore owns one namespace, so a
// primary store and a legacy store can live in the same database file.
package kvstore

import "context"

// Store is a string-keyed get/set/remove store.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
