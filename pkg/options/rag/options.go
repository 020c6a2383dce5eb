// Package ragopts provides retrieval pipeline configuration options.
package ragopts

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bookrag-io/bookrag/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// DefaultSystemPrompt instructs the model to answer only from the book.
const DefaultSystemPrompt = `You are a reading assistant for a book. Answer the question using only the provided book excerpts.
If the excerpts do not contain the answer, reply exactly: "This information is not available in the book."
Refer to excerpts by their numbers when citing.

Book excerpts:
{{context}}

Question: {{question}}

Answer:`

// Options contains retrieval pipeline configuration.
type Options struct {
	// Collection is the vector collection name.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the embedding vector dimension.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// ChunkSize is the target chunk size in characters.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between adjacent chunks.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// MinChunkSize drops fragments below this size.
	MinChunkSize int `json:"min-chunk-size" mapstructure:"min-chunk-size"`

	// TopK is the number of chunks retrieved per query.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// ScoreThreshold filters out hits scoring below it.
	ScoreThreshold float64 `json:"score-threshold" mapstructure:"score-threshold"`

	// EmbedBatchSize is the number of texts per embedding call.
	EmbedBatchSize int `json:"embed-batch-size" mapstructure:"embed-batch-size"`

	// SystemPrompt is the generation prompt template. It must contain
	// {{context}} and {{question}} placeholders.
	SystemPrompt string `json:"system-prompt" mapstructure:"system-prompt"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Collection:     "book_content",
		EmbeddingDim:   1024,
		ChunkSize:      500,
		ChunkOverlap:   50,
		MinChunkSize:   50,
		TopK:           5,
		ScoreThreshold: 0.0,
		EmbedBatchSize: 16,
		SystemPrompt:   DefaultSystemPrompt,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Collection, p+"collection", o.Collection, "Vector collection name.")
	fs.IntVar(&o.EmbeddingDim, p+"embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.IntVar(&o.ChunkSize, p+"chunk-size", o.ChunkSize, "Target chunk size in characters.")
	fs.IntVar(&o.ChunkOverlap, p+"chunk-overlap", o.ChunkOverlap, "Overlap between adjacent chunks.")
	fs.IntVar(&o.MinChunkSize, p+"min-chunk-size", o.MinChunkSize, "Minimum chunk size kept.")
	fs.IntVar(&o.TopK, p+"top-k", o.TopK, "Number of chunks retrieved per query.")
	fs.Float64Var(&o.ScoreThreshold, p+"score-threshold", o.ScoreThreshold, "Minimum similarity score kept.")
	fs.IntVar(&o.EmbedBatchSize, p+"embed-batch-size", o.EmbedBatchSize, "Texts per embedding call.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("collection is required"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("chunk-overlap must not be negative"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.EmbedBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("embed-batch-size must be positive"))
	}
	return errs
}
