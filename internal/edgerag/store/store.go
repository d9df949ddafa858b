// Package store provides data access interfaces and implementations for
// the edge-rag service.
package store

import (
	"context"

	"github.com/kart-io/edge-rag/internal/model"
)

// VectorStore abstracts the vector index.
type VectorStore interface {
	// Search returns the topK nearest candidates for vector. An empty
	// namespace searches the whole index.
	Search(ctx context.Context, vector []float32, topK int, namespace string) ([]model.Candidate, error)

	// Upsert writes all items in one call, replacing rows with the same ID.
	Upsert(ctx context.Context, items []model.VectorItem) error
}

// LogStore persists opaque values under unique keys. Used for the
// append-only request log.
type LogStore interface {
	Put(ctx context.Context, key string, value []byte) error
}
