package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/bookrag-io/bookrag/pkg/component/milvus"
	"github.com/bookrag-io/bookrag/pkg/log"
)

const primaryKeyField = "chunk_id"

var chunkOutputFields = []string{
	"chunk_id", "book_id", "chapter_id", "title", "source_path", "chunk_index", "text",
}

// MilvusStore implements VectorStore on top of Milvus.
type MilvusStore struct {
	client    *milvus.Client
	dimension int
}

// NewMilvusStore creates a Milvus-backed vector store.
// dimension is the expected embedding width; vectors that do not match it
// fail their upsert batch before reaching the server.
func NewMilvusStore(client *milvus.Client, dimension int) *MilvusStore {
	return &MilvusStore{client: client, dimension: dimension}
}

// EnsureCollection creates the collection if missing; with Recreate set it
// drops any existing collection first.
func (s *MilvusStore) EnsureCollection(ctx context.Context, config *CollectionConfig) error {
	if config.Recreate {
		exists, err := s.client.HasCollection(ctx, config.Name)
		if err != nil {
			return fmt.Errorf("failed to check collection: %w", err)
		}
		if exists {
			log.Warnw("dropping existing collection", "collection", config.Name)
			if err := s.client.DropCollection(ctx, config.Name); err != nil {
				return err
			}
		}
	}

	schema := &milvus.CollectionSchema{
		Name:        config.Name,
		Description: config.Description,
		Dimension:   config.Dimension,
		PrimaryKey:  primaryKeyField,
		MetaFields: []milvus.MetaField{
			{Name: "book_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "chapter_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "title", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "source_path", DataType: entity.FieldTypeVarChar, MaxLen: 512},
			{Name: "chunk_index", DataType: entity.FieldTypeInt64},
			{Name: "text", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	}
	return s.client.CreateCollection(ctx, schema)
}

// Upsert writes chunks in batches of UpsertBatchSize. A batch containing a
// vector of the wrong dimension is rejected as a whole; remaining batches
// still proceed. The returned count is the number of chunks written.
func (s *MilvusStore) Upsert(ctx context.Context, collection string, chunks []*Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	written := 0
	var batchErrs []error

	for start := 0; start < len(chunks); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		if err := s.validateBatch(batch); err != nil {
			batchErrs = append(batchErrs, fmt.Errorf("batch %d-%d: %w", start, end, err))
			continue
		}

		data := buildUpsertData(batch)
		if err := s.client.Upsert(ctx, collection, primaryKeyField, data); err != nil {
			batchErrs = append(batchErrs, fmt.Errorf("batch %d-%d: %w", start, end, err))
			continue
		}
		written += len(batch)
	}

	return written, errors.Join(batchErrs...)
}

func (s *MilvusStore) validateBatch(batch []*Chunk) error {
	for _, chunk := range batch {
		if len(chunk.Embedding) != s.dimension {
			return fmt.Errorf("chunk %s: embedding dimension %d does not match collection dimension %d",
				chunk.ID, len(chunk.Embedding), s.dimension)
		}
	}
	return nil
}

func buildUpsertData(batch []*Chunk) *milvus.UpsertData {
	ids := make([]string, len(batch))
	embeddings := make([][]float32, len(batch))
	metadata := map[string][]any{
		"book_id":     make([]any, len(batch)),
		"chapter_id":  make([]any, len(batch)),
		"title":       make([]any, len(batch)),
		"source_path": make([]any, len(batch)),
		"chunk_index": make([]any, len(batch)),
		"text":        make([]any, len(batch)),
	}

	for i, chunk := range batch {
		ids[i] = chunk.ID
		embeddings[i] = chunk.Embedding
		metadata["book_id"][i] = chunk.BookID
		metadata["chapter_id"][i] = chunk.ChapterID
		metadata["title"][i] = chunk.Title
		metadata["source_path"][i] = chunk.SourcePath
		metadata["chunk_index"][i] = int64(chunk.Index)
		metadata["text"][i] = chunk.Text
	}

	return &milvus.UpsertData{
		IDs:        ids,
		Embeddings: embeddings,
		Metadata:   metadata,
	}
}

// Search returns the topK nearest chunks by cosine similarity.
func (s *MilvusStore) Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	results, err := s.client.Search(ctx, collection, embedding, topK, chunkOutputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	searchResults := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		sr := &SearchResult{Score: r.Score}
		sr.ID = r.ID
		if sr.ID == "" {
			sr.ID = metaString(r.Metadata, "chunk_id")
		}
		sr.BookID = metaString(r.Metadata, "book_id")
		sr.ChapterID = metaString(r.Metadata, "chapter_id")
		sr.Title = metaString(r.Metadata, "title")
		sr.SourcePath = metaString(r.Metadata, "source_path")
		sr.Text = metaString(r.Metadata, "text")
		if idx, ok := r.Metadata["chunk_index"].(int64); ok {
			sr.Index = int(idx)
		}
		searchResults = append(searchResults, sr)
	}

	return searchResults, nil
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// Count returns the number of stored chunks.
func (s *MilvusStore) Count(ctx context.Context, collection string) (int64, error) {
	return s.client.GetCollectionStats(ctx, collection)
}

// Drop removes the collection.
func (s *MilvusStore) Drop(ctx context.Context, collection string) error {
	if err := s.client.DropCollection(ctx, collection); err != nil {
		// Dropping a missing collection should not fail a reset.
		if strings.Contains(err.Error(), "not exist") {
			return nil
		}
		return err
	}
	return nil
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

var _ VectorStore = (*MilvusStore)(nil)
