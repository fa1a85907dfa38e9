// Package securestore persists small secrets (session snapshots) encrypted at
// rest, mirroring the secure key-value storage mobile clients rely on.
package securestore

import "errors"

// ErrNotFound is returned when no value exists for the requested key.
var ErrNotFound = errors.New("securestore: key not found")

// Store is an encrypted key-value container for client-side state.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, value []byte) error
	Delete(key string) error
}
