package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bookrag-io/bookrag/internal/pkg/textutil"
)

// MemoryStore is an in-memory VectorStore using brute-force cosine
// similarity. It backs tests and local development without Milvus.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	dimension int
	chunks    map[string]*Chunk
}

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
	}
}

// EnsureCollection creates the collection if missing; with Recreate set it
// replaces any existing collection.
func (s *MemoryStore) EnsureCollection(_ context.Context, config *CollectionConfig) error {
	if config.Dimension <= 0 {
		return fmt.Errorf("invalid collection dimension %d", config.Dimension)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collections[config.Name]; exists && !config.Recreate {
		return nil
	}
	s.collections[config.Name] = &memoryCollection{
		dimension: config.Dimension,
		chunks:    make(map[string]*Chunk),
	}
	return nil
}

// Upsert writes chunks in batches of UpsertBatchSize, overwriting chunks
// with an existing ID. A batch containing a mismatched vector dimension is
// rejected as a whole; other batches proceed.
func (s *MemoryStore) Upsert(_ context.Context, collection string, chunks []*Chunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("collection %q does not exist", collection)
	}

	written := 0
	var batchErrs []error

	for start := 0; start < len(chunks); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		valid := true
		for _, chunk := range batch {
			if len(chunk.Embedding) != coll.dimension {
				batchErrs = append(batchErrs, fmt.Errorf(
					"batch %d-%d: chunk %s: embedding dimension %d does not match collection dimension %d",
					start, end, chunk.ID, len(chunk.Embedding), coll.dimension))
				valid = false
				break
			}
		}
		if !valid {
			continue
		}

		for _, chunk := range batch {
			cp := *chunk
			coll.chunks[chunk.ID] = &cp
		}
		written += len(batch)
	}

	return written, errors.Join(batchErrs...)
}

// Search scans the collection and returns the topK chunks by cosine
// similarity, highest first.
func (s *MemoryStore) Search(_ context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}
	if topK <= 0 {
		return []*SearchResult{}, nil
	}

	results := make([]*SearchResult, 0, len(coll.chunks))
	for _, chunk := range coll.chunks {
		score := textutil.CosineSimilarity(embedding, chunk.Embedding)
		results = append(results, &SearchResult{
			Chunk: *chunk,
			Score: float32(score),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (s *MemoryStore) Count(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return 0, nil
	}
	return int64(len(coll.chunks)), nil
}

// Drop removes the collection.
func (s *MemoryStore) Drop(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}

var _ VectorStore = (*MemoryStore)(nil)
