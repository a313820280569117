// Package storage persists generated artifacts under a flat name and hands
// back retrievable URLs.
package storage

import "context"

// Store is the capability contract shared by the filesystem and object-store
// backends. Save either fully succeeds, making the name retrievable through
// URL, or returns an error; no partial-write state is ever exposed. Delete is
// best-effort and swallows missing names.
type Store interface {
	Save(ctx context.Context, name string, data []byte) error
	URL(name string) string
	Delete(ctx context.Context, name string) error
}
