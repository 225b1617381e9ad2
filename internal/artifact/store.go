// Package artifact stores supporting documents referenced from certificates.
// Content is addressed by the hex SHA-256 of its bytes, so a ref both names
// and checks the artifact it points at.
package artifact

import "context"

// Ref identifies stored content. It is the lowercase hex SHA-256 digest of
// the bytes and is safe to embed in a certificate's ArtifactRef field.
type Ref string

// Store is a content-addressed blob store.
type Store interface {
	// Put saves data and returns its ref. Storing the same bytes twice
	// yields the same ref and is not an error.
	Put(ctx context.Context, data []byte) (Ref, error)
	// Get returns the bytes for a ref, or CodeNotFound when absent.
	Get(ctx context.Context, ref Ref) ([]byte, error)
}
