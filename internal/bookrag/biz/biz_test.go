package biz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookrag-io/bookrag/internal/bookrag/store"
	"github.com/bookrag-io/bookrag/pkg/llm"
)

// stubEmbedder maps keyword-bearing texts onto fixed axes, so tests can
// steer which chunks a query lands on.
type stubEmbedder struct {
	err error
}

var _ llm.EmbeddingProvider = (*stubEmbedder)(nil)

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if strings.Contains(text, "FAILME") {
			return nil, errors.New("embedding rejected")
		}
		out = append(out, embedText(text))
	}
	return out, nil
}

func (s *stubEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *stubEmbedder) Name() string { return "stub" }

func embedText(text string) []float32 {
	switch {
	case strings.Contains(text, "whale"):
		return []float32{1, 0, 0, 0}
	case strings.Contains(text, "harpoon"):
		return []float32{0.9, 0.1, 0, 0}
	default:
		return []float32{0, 0, 0, 1}
	}
}

// stubChat returns a canned reply and records the prompt it saw.
type stubChat struct {
	reply      string
	err        error
	lastPrompt string
	calls      int
}

var _ llm.ChatProvider = (*stubChat)(nil)

func (s *stubChat) Chat(_ context.Context, messages []llm.Message) (string, error) {
	s.calls++
	if len(messages) > 0 {
		s.lastPrompt = messages[len(messages)-1].Content
	}
	return s.reply, s.err
}

func (s *stubChat) Generate(_ context.Context, prompt, _ string) (string, error) {
	s.calls++
	s.lastPrompt = prompt
	return s.reply, s.err
}

func (s *stubChat) Name() string { return "stub" }

// failChat fails the test when the model is consulted.
type failChat struct {
	t *testing.T
}

var _ llm.ChatProvider = (*failChat)(nil)

func (f *failChat) Chat(context.Context, []llm.Message) (string, error) {
	f.t.Fatal("chat provider must not be called")
	return "", nil
}

func (f *failChat) Generate(context.Context, string, string) (string, error) {
	f.t.Fatal("chat provider must not be called")
	return "", nil
}

func (f *failChat) Name() string { return "fail" }

const testCollection = "book_content_test"

func newTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	ms := store.NewMemoryStore()
	err := ms.EnsureCollection(context.Background(), &store.CollectionConfig{
		Name:      testCollection,
		Dimension: 4,
	})
	require.NoError(t, err)
	return ms
}

func seedChunks(t *testing.T, ms *store.MemoryStore, chunks []*store.Chunk) {
	t.Helper()
	written, err := ms.Upsert(context.Background(), testCollection, chunks)
	require.NoError(t, err)
	require.Equal(t, len(chunks), written)
}

func testChunk(id, bookID, text string) *store.Chunk {
	return &store.Chunk{
		ID:         id,
		BookID:     bookID,
		Title:      "Chapter " + id,
		SourcePath: "chapters/" + id + ".md",
		Text:       text,
		Embedding:  embedText(text),
	}
}

func TestGeneratorFallbackWithoutResults(t *testing.T) {
	gen := NewGenerator(&failChat{t: t}, &GeneratorConfig{SystemPrompt: "{{context}} {{question}}"})

	answer, err := gen.Generate(context.Background(), "Who is Ahab?", nil)
	require.NoError(t, err)

	assert.Equal(t, "This information is not available in the book.", answer.Text)
	assert.True(t, answer.IsFallback)
	assert.Empty(t, answer.Citations)
}

func TestGeneratorBuildsPromptAndCitations(t *testing.T) {
	chat := &stubChat{reply: "  Ahab hunts the whale.  "}
	gen := NewGenerator(chat, &GeneratorConfig{
		SystemPrompt: "Excerpts:\n{{context}}\n\nQ: {{question}}",
	})

	results := []*store.SearchResult{
		{Chunk: *testChunk("c1", "moby", "The whale surfaces."), Score: 0.97},
		{Chunk: *testChunk("c2", "moby", "A harpoon is thrown."), Score: 0.81},
	}

	answer, err := gen.Generate(context.Background(), "Who hunts the whale?", results)
	require.NoError(t, err)

	assert.Equal(t, "Ahab hunts the whale.", answer.Text)
	assert.False(t, answer.IsFallback)
	assert.Equal(t, 1, chat.calls)

	assert.Contains(t, chat.lastPrompt, "[1] Chapter c1 (chapters/c1.md):\nThe whale surfaces.")
	assert.Contains(t, chat.lastPrompt, "[2] Chapter c2 (chapters/c2.md):\nA harpoon is thrown.")
	assert.Contains(t, chat.lastPrompt, "Q: Who hunts the whale?")
	assert.NotContains(t, chat.lastPrompt, "{{context}}")
	assert.NotContains(t, chat.lastPrompt, "{{question}}")

	require.Len(t, answer.Citations, 2)
	assert.Equal(t, "c1", answer.Citations[0].ChunkID)
	assert.Equal(t, "moby", answer.Citations[0].BookID)
	assert.Equal(t, "chapters/c1.md", answer.Citations[0].SourcePath)
	assert.Equal(t, "The whale surfaces.", answer.Citations[0].Snippet)
	assert.InDelta(t, 0.97, answer.Citations[0].Score, 1e-6)
}

func TestGeneratorDetectsModelFallback(t *testing.T) {
	// Chunks were retrieved, but the model concludes they hold no
	// answer. The reply must be flagged as the fallback and carry no
	// citations.
	chat := &stubChat{reply: "  " + FallbackAnswer + "  "}
	gen := NewGenerator(chat, &GeneratorConfig{SystemPrompt: "{{context}} {{question}}"})

	results := []*store.SearchResult{
		{Chunk: *testChunk("c1", "moby", "The whale surfaces."), Score: 0.42},
	}

	answer, err := gen.Generate(context.Background(), "Who is Ishmael's dentist?", results)
	require.NoError(t, err)

	assert.Equal(t, FallbackAnswer, answer.Text)
	assert.True(t, answer.IsFallback)
	assert.Empty(t, answer.Citations)
	assert.Equal(t, 1, chat.calls)
}

func TestGeneratorTruncatesSnippets(t *testing.T) {
	chat := &stubChat{reply: "ok"}
	gen := NewGenerator(chat, &GeneratorConfig{SystemPrompt: "{{context}} {{question}}"})

	long := strings.Repeat("whale ", 100)
	results := []*store.SearchResult{
		{Chunk: *testChunk("c1", "moby", long), Score: 1},
	}

	answer, err := gen.Generate(context.Background(), "q", results)
	require.NoError(t, err)
	require.Len(t, answer.Citations, 1)
	assert.Len(t, []rune(answer.Citations[0].Snippet), snippetLength)
	assert.True(t, strings.HasPrefix(long, answer.Citations[0].Snippet))
}

func TestGeneratorPropagatesProviderError(t *testing.T) {
	chat := &stubChat{err: errors.New("model overloaded")}
	gen := NewGenerator(chat, &GeneratorConfig{SystemPrompt: "{{context}} {{question}}"})

	results := []*store.SearchResult{
		{Chunk: *testChunk("c1", "moby", "The whale surfaces."), Score: 1},
	}

	_, err := gen.Generate(context.Background(), "q", results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate answer")
}

func TestRetrieverReturnsTopK(t *testing.T) {
	ms := newTestStore(t)
	seedChunks(t, ms, []*store.Chunk{
		testChunk("c1", "moby", "The whale surfaces."),
		testChunk("c2", "moby", "A harpoon is thrown."),
		testChunk("c3", "moby", "The crew eats dinner."),
	})

	r := NewRetriever(ms, &stubEmbedder{}, &RetrieverConfig{
		Collection: testCollection,
		TopK:       2,
	})

	results, err := r.Retrieve(context.Background(), &QueryInput{Question: "Tell me about the whale"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c1", results[0].ID)
	assert.Equal(t, "c2", results[1].ID)
}

func TestRetrieverFiltersByBook(t *testing.T) {
	ms := newTestStore(t)
	seedChunks(t, ms, []*store.Chunk{
		testChunk("c1", "moby", "The whale surfaces."),
		testChunk("c2", "other", "Another whale appears."),
		testChunk("c3", "other", "A harpoon whale chase."),
		testChunk("c4", "moby", "A harpoon is thrown."),
	})

	r := NewRetriever(ms, &stubEmbedder{}, &RetrieverConfig{
		Collection: testCollection,
		TopK:       2,
	})

	results, err := r.Retrieve(context.Background(), &QueryInput{
		Question: "whale",
		BookID:   "moby",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.Equal(t, "moby", res.BookID)
	}
}

func TestRetrieverScoreThreshold(t *testing.T) {
	ms := newTestStore(t)
	seedChunks(t, ms, []*store.Chunk{
		testChunk("c1", "moby", "The whale surfaces."),
		testChunk("c2", "moby", "The crew eats dinner."),
	})

	r := NewRetriever(ms, &stubEmbedder{}, &RetrieverConfig{
		Collection:     testCollection,
		TopK:           5,
		ScoreThreshold: 0.5,
	})

	results, err := r.Retrieve(context.Background(), &QueryInput{Question: "whale"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].ID)
}

func TestGeneratorFromSelection(t *testing.T) {
	chat := &stubChat{reply: "It describes the whale breaching."}
	gen := NewGenerator(chat, &GeneratorConfig{
		SystemPrompt: "Excerpts:\n{{context}}\n\nQ: {{question}}",
	})

	answer, err := gen.GenerateFromSelection(context.Background(),
		"What does this passage mean?",
		"the whale rose from the deep",
	)
	require.NoError(t, err)

	assert.Equal(t, "It describes the whale breaching.", answer.Text)
	assert.False(t, answer.IsFallback)
	assert.Empty(t, answer.Citations)
	assert.Contains(t, chat.lastPrompt, "[1] Selected passage:\nthe whale rose from the deep")
	assert.Contains(t, chat.lastPrompt, "Q: What does this passage mean?")
}

func TestRetrieverEmbeddingFailure(t *testing.T) {
	ms := newTestStore(t)
	r := NewRetriever(ms, &stubEmbedder{err: errors.New("service down")}, &RetrieverConfig{
		Collection: testCollection,
		TopK:       5,
	})

	_, err := r.Retrieve(context.Background(), &QueryInput{Question: "whale"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed query")
}
