package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookrag-io/bookrag/internal/bookrag/store"
	"github.com/bookrag-io/bookrag/internal/model"
	"github.com/bookrag-io/bookrag/internal/pkg/textutil"
	"github.com/bookrag-io/bookrag/pkg/llm"
	"github.com/bookrag-io/bookrag/pkg/log"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

// FallbackAnswer is returned verbatim when retrieval finds nothing (the
// model is never called then) and recognized when the model itself
// concludes the excerpts hold no answer, so clients can match on it.
const FallbackAnswer = "This information is not available in the book."

// snippetLength bounds citation snippets.
const snippetLength = 200

// GeneratorConfig configures answer generation.
type GeneratorConfig struct {
	// SystemPrompt is the prompt template. It must contain {{context}}
	// and {{question}} placeholders.
	SystemPrompt string
}

// Generator turns retrieved chunks into a grounded answer.
type Generator struct {
	chatProvider llm.ChatProvider
	config       *GeneratorConfig
}

// NewGenerator creates a Generator.
func NewGenerator(chatProvider llm.ChatProvider, config *GeneratorConfig) *Generator {
	return &Generator{
		chatProvider: chatProvider,
		config:       config,
	}
}

// Generate produces an answer from the question and retrieved chunks.
// With no chunks it returns the fallback answer without calling the
// model.
func (g *Generator) Generate(ctx context.Context, question string, results []*store.SearchResult) (*model.Answer, error) {
	if len(results) == 0 {
		return &model.Answer{
			Text:       FallbackAnswer,
			Citations:  []model.Citation{},
			IsFallback: true,
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prompt := g.buildPrompt(question, results)

	text, err := g.chatProvider.Generate(ctx, prompt, "")
	if err != nil {
		return nil, apierrors.ErrProvider.WithMessage("failed to generate answer").WithCause(err)
	}

	// The model may itself conclude the excerpts hold no answer. That
	// reply is the fallback: flag it and drop the citations, since they
	// would point at chunks the answer was not grounded in.
	if strings.TrimSpace(text) == FallbackAnswer {
		return &model.Answer{
			Text:       FallbackAnswer,
			Citations:  []model.Citation{},
			IsFallback: true,
		}, nil
	}

	answer := &model.Answer{
		Text:      strings.TrimSpace(text),
		Citations: buildCitations(results),
	}

	log.Debugw("answer generated",
		"citations", len(answer.Citations),
		"answer_len", len(answer.Text),
	)
	return answer, nil
}

// GenerateFromSelection answers from the passage the reader
// highlighted, ignoring the vector index entirely. The answer carries
// no citations: the reader already has the source in front of them.
func (g *Generator) GenerateFromSelection(ctx context.Context, question, selectedText string) (*model.Answer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	excerpt := "[1] Selected passage:\n" + strings.TrimSpace(selectedText)
	prompt := strings.ReplaceAll(g.config.SystemPrompt, "{{context}}", excerpt)
	prompt = strings.ReplaceAll(prompt, "{{question}}", question)

	text, err := g.chatProvider.Generate(ctx, prompt, "")
	if err != nil {
		return nil, apierrors.ErrProvider.WithMessage("failed to generate answer").WithCause(err)
	}

	return &model.Answer{
		Text:       strings.TrimSpace(text),
		Citations:  []model.Citation{},
		IsFallback: strings.TrimSpace(text) == FallbackAnswer,
	}, nil
}

// buildPrompt renders the prompt template with numbered excerpts.
func (g *Generator) buildPrompt(question string, results []*store.SearchResult) string {
	var sb strings.Builder
	for i, res := range results {
		fmt.Fprintf(&sb, "[%d] %s (%s):\n%s\n\n", i+1, res.Title, res.SourcePath, res.Text)
	}

	prompt := strings.ReplaceAll(g.config.SystemPrompt, "{{context}}", strings.TrimSpace(sb.String()))
	prompt = strings.ReplaceAll(prompt, "{{question}}", question)
	return prompt
}

func buildCitations(results []*store.SearchResult) []model.Citation {
	citations := make([]model.Citation, 0, len(results))
	for _, res := range results {
		citations = append(citations, model.Citation{
			ChunkID:    res.ID,
			BookID:     res.BookID,
			ChapterID:  res.ChapterID,
			Title:      res.Title,
			SourcePath: res.SourcePath,
			Snippet:    textutil.TruncateString(res.Text, snippetLength),
			Score:      res.Score,
		})
	}
	return citations
}
