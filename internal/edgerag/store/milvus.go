package store

import (
	"context"
	"fmt"

	"github.com/kart-io/edge-rag/internal/model"
	"github.com/kart-io/edge-rag/pkg/component/milvus"
)

// MilvusStore implements VectorStore backed by Milvus.
type MilvusStore struct {
	client *milvus.Client
}

var _ VectorStore = (*MilvusStore)(nil)

// NewMilvusStore creates a new Milvus-backed vector store.
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

// Search performs a similarity search.
func (s *MilvusStore) Search(ctx context.Context, vector []float32, topK int, namespace string) ([]model.Candidate, error) {
	matches, err := s.client.Search(ctx, vector, topK, namespace)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	candidates := make([]model.Candidate, len(matches))
	for i, m := range matches {
		candidates[i] = model.Candidate{
			ID:        m.ID,
			Namespace: m.Namespace,
			Score:     m.Score,
			Text:      m.Text,
		}
	}
	return candidates, nil
}

// Upsert writes all items in a single call.
func (s *MilvusStore) Upsert(ctx context.Context, items []model.VectorItem) error {
	rows := make([]milvus.Item, len(items))
	for i, item := range items {
		rows[i] = milvus.Item{
			ID:        item.ID,
			Embedding: item.Values,
			Namespace: item.Namespace,
			Text:      item.Text,
		}
	}

	if err := s.client.Upsert(ctx, rows); err != nil {
		return fmt.Errorf("vector upsert failed: %w", err)
	}
	return nil
}
