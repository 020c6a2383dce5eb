// Package biz provides the business logic of the bookrag service:
// ingestion, retrieval, answer generation and chat sessions.
package biz

import (
	"context"
	"strings"

	"github.com/bookrag-io/bookrag/internal/bookrag/store"
	"github.com/bookrag-io/bookrag/pkg/llm"
	"github.com/bookrag-io/bookrag/pkg/log"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

// overFetchFactor widens the search when results are post-filtered by
// book, so that filtering still leaves enough hits to fill TopK.
const overFetchFactor = 3

// RetrieverConfig configures retrieval.
type RetrieverConfig struct {
	// Collection is the vector collection name.
	Collection string
	// TopK is the number of chunks returned.
	TopK int
	// ScoreThreshold drops hits scoring below it.
	ScoreThreshold float64
}

// QueryInput is one retrieval request.
type QueryInput struct {
	// Question is the reader's question.
	Question string
	// BookID restricts results to one book when set.
	BookID string
	// SelectedText is the passage the reader highlighted. When present,
	// generation uses it as the only context and retrieval is skipped;
	// it still participates in answer cache keys.
	SelectedText string
}

// Retriever embeds queries and searches the vector index.
type Retriever struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	config        *RetrieverConfig
}

// NewRetriever creates a Retriever.
func NewRetriever(vectorStore store.VectorStore, embedProvider llm.EmbeddingProvider, config *RetrieverConfig) *Retriever {
	return &Retriever{
		store:         vectorStore,
		embedProvider: embedProvider,
		config:        config,
	}
}

// Retrieve returns the most relevant chunks for the input. An empty
// result is not an error: it means the book has nothing relevant.
func (r *Retriever) Retrieve(ctx context.Context, input *QueryInput) ([]*store.SearchResult, error) {
	embedding, err := r.embedProvider.EmbedSingle(ctx, strings.TrimSpace(input.Question))
	if err != nil {
		return nil, apierrors.ErrProvider.WithMessage("failed to embed query").WithCause(err)
	}

	// Book filtering happens after the search, so over-fetch to keep the
	// filtered result set full.
	limit := r.config.TopK
	if input.BookID != "" {
		limit = r.config.TopK * overFetchFactor
	}

	results, err := r.store.Search(ctx, r.config.Collection, embedding, limit)
	if err != nil {
		return nil, apierrors.ErrVectorStore.WithCause(err)
	}

	filtered := make([]*store.SearchResult, 0, r.config.TopK)
	for _, res := range results {
		if float64(res.Score) < r.config.ScoreThreshold {
			continue
		}
		if input.BookID != "" && res.BookID != input.BookID {
			continue
		}
		filtered = append(filtered, res)
		if len(filtered) == r.config.TopK {
			break
		}
	}

	log.Debugw("retrieval finished",
		"question_len", len(input.Question),
		"book_id", input.BookID,
		"hits", len(filtered),
	)
	return filtered, nil
}
