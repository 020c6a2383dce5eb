// Package store provides the vector index and relational persistence
// backing the bookrag service.
package store

import (
	"context"
)

// Chunk is one embedded excerpt of a book.
type Chunk struct {
	// ID is the deterministic chunk identifier, derived from book,
	// source path and chunk index. Re-ingesting the same source
	// overwrites the same points.
	ID string
	// BookID identifies the book the chunk belongs to.
	BookID string
	// ChapterID identifies the chapter, when known.
	ChapterID string
	// Title is the document title the chunk came from.
	Title string
	// SourcePath is the markdown file the chunk came from.
	SourcePath string
	// Index is the position of the chunk within its source document.
	Index int
	// Text is the chunk content.
	Text string
	// Embedding is the chunk's vector.
	Embedding []float32
}

// SearchResult is one retrieval hit.
type SearchResult struct {
	Chunk
	// Score is the cosine similarity to the query vector.
	Score float32
}

// CollectionConfig describes a vector collection.
type CollectionConfig struct {
	// Name is the collection name.
	Name string
	// Description is the collection description.
	Description string
	// Dimension is the vector dimension.
	Dimension int
	// Recreate drops any existing collection first. Destructive, but
	// makes collection setup idempotent.
	Recreate bool
}

// VectorStore is the vector index abstraction.
type VectorStore interface {
	// EnsureCollection creates the collection if missing. With
	// config.Recreate set it drops the collection first.
	EnsureCollection(ctx context.Context, config *CollectionConfig) error

	// Upsert writes chunks in batches. Points with an existing ID are
	// overwritten. It returns the number of chunks written; a batch
	// containing a vector of the wrong dimension fails as a whole while
	// other batches proceed.
	Upsert(ctx context.Context, collection string, chunks []*Chunk) (int, error)

	// Search returns the topK nearest chunks by cosine similarity.
	Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context, collection string) (int64, error)

	// Drop removes the collection.
	Drop(ctx context.Context, collection string) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// UpsertBatchSize is how many chunks are written per vector store call.
const UpsertBatchSize = 100
