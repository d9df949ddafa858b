// Package milvus wraps the Milvus SDK client for the edge-rag vector index.
package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	milvusopts "github.com/kart-io/edge-rag/pkg/options/milvus"
)

const (
	fieldID        = "id"
	fieldEmbedding = "embedding"
	fieldNamespace = "namespace"
	fieldText      = "text"

	idMaxLen        = 64
	namespaceMaxLen = 256
	textMaxLen      = 65535
)

// Client wraps the Milvus SDK client.
type Client struct {
	client *milvusclient.Client
	opts   *milvusopts.Options
}

// New creates a new Milvus client.
func New(opts *milvusopts.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("milvus options is nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  opts.Address,
		Username: opts.Username,
		Password: opts.Password,
		DBName:   opts.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}

	return &Client{
		client: c,
		opts:   opts,
	}, nil
}

// Close closes the Milvus client connection.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// RawClient returns the underlying Milvus client.
func (c *Client) RawClient() *milvusclient.Client {
	return c.client
}

// EnsureCollection creates the vector collection if it does not exist yet.
// IDs are caller-chosen strings so re-ingesting a document overwrites its
// previous vector instead of duplicating it; AutoID would break that.
func (c *Client) EnsureCollection(ctx context.Context) error {
	name := c.opts.Collection

	exists, err := c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(name))
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	schema := entity.NewSchema().
		WithName(name).
		WithDescription("edge-rag document vectors").
		WithField(
			entity.NewField().
				WithName(fieldID).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(idMaxLen).
				WithIsPrimaryKey(true),
		).
		WithField(
			entity.NewField().
				WithName(fieldEmbedding).
				WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(c.opts.Dimension)),
		).
		WithField(
			entity.NewField().
				WithName(fieldNamespace).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(namespaceMaxLen),
		).
		WithField(
			entity.NewField().
				WithName(fieldText).
				WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(textMaxLen),
		)

	if err := c.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(name, schema)); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx := index.NewIvfFlatIndex(entity.COSINE, 128)
	createIdxTask, err := c.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(name, fieldEmbedding, idx))
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := createIdxTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for index creation: %w", err)
	}

	loadTask, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(name))
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for collection loading: %w", err)
	}

	return nil
}

// Item is one vector row for upsert.
type Item struct {
	ID        string
	Embedding []float32
	Namespace string
	Text      string
}

// Upsert writes the items in a single call, replacing rows that share an ID.
func (c *Client) Upsert(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	embeddings := make([][]float32, len(items))
	namespaces := make([]string, len(items))
	texts := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
		embeddings[i] = item.Embedding
		namespaces[i] = item.Namespace
		texts[i] = item.Text
	}

	columns := []column.Column{
		column.NewColumnVarChar(fieldID, ids),
		column.NewColumnFloatVector(fieldEmbedding, c.opts.Dimension, embeddings),
		column.NewColumnVarChar(fieldNamespace, namespaces),
		column.NewColumnVarChar(fieldText, texts),
	}

	if _, err := c.client.Upsert(ctx, milvusclient.NewColumnBasedInsertOption(c.opts.Collection, columns...)); err != nil {
		return fmt.Errorf("failed to upsert data: %w", err)
	}

	// Flush so ingested vectors are searchable immediately. Ingestion here is
	// low-volume admin traffic, not a bulk loading path.
	flushTask, err := c.client.Flush(ctx, milvusclient.NewFlushOption(c.opts.Collection))
	if err != nil {
		return fmt.Errorf("failed to flush collection: %w", err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return fmt.Errorf("failed to wait for flush: %w", err)
	}

	return nil
}

// Match is a single search hit.
type Match struct {
	ID        string
	Score     float32
	Namespace string
	Text      string
}

// Search performs a vector similarity search. An empty namespace searches
// the whole collection.
func (c *Client) Search(ctx context.Context, vector []float32, topK int, namespace string) ([]Match, error) {
	searchVectors := []entity.Vector{entity.FloatVector(vector)}

	opt := milvusclient.NewSearchOption(c.opts.Collection, topK, searchVectors).
		WithANNSField(fieldEmbedding).
		WithSearchParam("nprobe", "16").
		WithOutputFields(fieldNamespace, fieldText)
	if namespace != "" {
		opt = opt.WithFilter(fmt.Sprintf("%s == %q", fieldNamespace, namespace))
	}

	results, err := c.client.Search(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	if len(results) == 0 {
		return []Match{}, nil
	}

	matches := make([]Match, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		m := Match{
			Score: results[0].Scores[i],
		}

		if idCol, ok := results[0].IDs.(*column.ColumnVarChar); ok {
			m.ID = idCol.Data()[i]
		}

		for _, field := range results[0].Fields {
			col, ok := field.(*column.ColumnVarChar)
			if !ok {
				continue
			}
			switch col.Name() {
			case fieldNamespace:
				m.Namespace = col.Data()[i]
			case fieldText:
				m.Text = col.Data()[i]
			}
		}

		matches = append(matches, m)
	}

	return matches, nil
}

// DropCollection drops the vector collection.
func (c *Client) DropCollection(ctx context.Context) error {
	if err := c.client.DropCollection(ctx, milvusclient.NewDropCollectionOption(c.opts.Collection)); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}
