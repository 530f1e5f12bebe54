// Package vectorstore defines the contract for the hosted vector index and
// the types shared by its implementations.
package vectorstore

import (
	"context"
	"fmt"
)

// MetadataKeyChunk is the metadata field holding the original passage text.
const MetadataKeyChunk = "chunk"

// Entry is one persisted (id, vector, metadata) triple within a namespace.
// IDs are caller-assigned; upserting an existing ID overwrites the entry.
type Entry struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// Match is one query result, highest similarity first.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]string
}

// Store persists embedding vectors and supports nearest-neighbor retrieval.
type Store interface {
	// EnsureIndex creates the index if it does not exist. Safe to call
	// repeatedly; an existing index with the same name is left untouched.
	EnsureIndex(ctx context.Context, name string, dimension int) error

	// Upsert inserts or overwrites entries within a namespace.
	Upsert(ctx context.Context, namespace string, entries []Entry) error

	// Query returns up to topK entries in the namespace ranked by descending
	// similarity to vector. An empty namespace yields an empty result, not
	// an error.
	Query(ctx context.Context, namespace string, vector []float32, topK int, includeMetadata bool) ([]Match, error)
}

// UploadError reports a vector store write failure.
type UploadError struct {
	Namespace string
	Err       error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upsert into namespace %q: %v", e.Namespace, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
