package biz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookrag-io/bookrag/internal/bookrag/store"
	"github.com/bookrag-io/bookrag/pkg/llm"
	dbopts "github.com/bookrag-io/bookrag/pkg/options/database"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

func newTestService(t *testing.T, chat llm.ChatProvider, withDB bool) (Service, *store.MemoryStore, *store.ChapterStore) {
	t.Helper()

	ms := newTestStore(t)
	embedder := &stubEmbedder{}

	var chapters *store.ChapterStore
	if withDB {
		db, err := store.NewDB(&dbopts.Options{Path: ":memory:", AutoMigrate: true})
		require.NoError(t, err)
		chapters = store.NewChapterStore(db)
	}

	svc := NewService(
		NewIndexer(ms, embedder, &IndexerConfig{
			Collection:     testCollection,
			ChunkSize:      500,
			ChunkOverlap:   50,
			MinChunkSize:   10,
			EmbedBatchSize: 16,
		}),
		NewRetriever(ms, embedder, &RetrieverConfig{
			Collection: testCollection,
			TopK:       3,
		}),
		NewGenerator(chat, &GeneratorConfig{SystemPrompt: "{{context}}\n\nQ: {{question}}"}),
		nil,
		ms,
		chapters,
		&ServiceConfig{
			Collection:   testCollection,
			EmbeddingDim: 4,
			SessionTTL:   time.Minute,
		},
	)
	t.Cleanup(svc.Close)
	return svc, ms, chapters
}

func TestServiceQueryRoundTrip(t *testing.T) {
	chat := &stubChat{reply: "The whale surfaces at dawn."}
	svc, _, chapters := newTestService(t, chat, true)

	_, err := svc.IngestText(context.Background(), "moby", "ch.md", "The whale surfaces at dawn and the chase begins.")
	require.NoError(t, err)

	answer, err := svc.Query(context.Background(), &QueryRequest{
		Question: "When does the whale surface?",
		BookID:   "moby",
	})
	require.NoError(t, err)

	assert.Equal(t, "The whale surfaces at dawn.", answer.Text)
	assert.False(t, answer.IsFallback)
	assert.NotEmpty(t, answer.SessionID)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "moby", answer.Citations[0].BookID)

	// The exchange lands in the session history.
	session, err := svc.Sessions().Get(answer.SessionID)
	require.NoError(t, err)
	require.Len(t, session.History, 1)
	assert.Equal(t, "When does the whale surface?", session.History[0].Question)

	// And the query is logged.
	count, err := chapters.QueryCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestServiceQueryFallbackSkipsModel(t *testing.T) {
	svc, _, _ := newTestService(t, &failChat{t: t}, false)

	// Nothing ingested: retrieval is empty, so the model is never called.
	answer, err := svc.Query(context.Background(), &QueryRequest{Question: "Who is Ahab?"})
	require.NoError(t, err)

	assert.Equal(t, FallbackAnswer, answer.Text)
	assert.True(t, answer.IsFallback)
	assert.Empty(t, answer.Citations)
	assert.NotEmpty(t, answer.SessionID)
}

func TestServiceQueryValidation(t *testing.T) {
	svc, _, _ := newTestService(t, &stubChat{reply: "x"}, false)

	_, err := svc.Query(context.Background(), &QueryRequest{Question: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrInvalidRequest))
}

func TestServiceQueryUnknownSession(t *testing.T) {
	svc, _, _ := newTestService(t, &stubChat{reply: "x"}, false)

	_, err := svc.Query(context.Background(), &QueryRequest{
		Question:  "Who is Ahab?",
		SessionID: "expired-or-bogus",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrSessionNotFound))
}

func TestServiceQueryContinuesSession(t *testing.T) {
	chat := &stubChat{reply: "An answer."}
	svc, _, _ := newTestService(t, chat, false)

	_, err := svc.IngestText(context.Background(), "moby", "ch.md", "The whale surfaces at dawn.")
	require.NoError(t, err)

	first, err := svc.Query(context.Background(), &QueryRequest{Question: "whale?"})
	require.NoError(t, err)

	second, err := svc.Query(context.Background(), &QueryRequest{
		Question:  "more about the whale?",
		SessionID: first.SessionID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	session, err := svc.Sessions().Get(first.SessionID)
	require.NoError(t, err)
	assert.Len(t, session.History, 2)
}

func TestServiceQuerySelectedTextSkipsRetrieval(t *testing.T) {
	chat := &stubChat{reply: "The passage describes the breach."}
	svc, _, _ := newTestService(t, chat, false)

	// Nothing is ingested: retrieval would yield the fallback, but the
	// highlighted passage is the context, so generation still runs.
	answer, err := svc.Query(context.Background(), &QueryRequest{
		Question:     "What does this mean?",
		SelectedText: "the whale rose from the deep",
	})
	require.NoError(t, err)

	assert.Equal(t, "The passage describes the breach.", answer.Text)
	assert.False(t, answer.IsFallback)
	assert.Empty(t, answer.Citations)
	assert.Equal(t, 1, chat.calls)
	assert.Contains(t, chat.lastPrompt, "the whale rose from the deep")
}

func TestServiceResetCollection(t *testing.T) {
	svc, ms, _ := newTestService(t, &stubChat{reply: "x"}, false)

	_, err := svc.IngestText(context.Background(), "moby", "ch.md", "The whale surfaces at dawn.")
	require.NoError(t, err)

	require.NoError(t, svc.ResetCollection(context.Background()))

	count, err := ms.Count(context.Background(), testCollection)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestServiceStats(t *testing.T) {
	svc, _, _ := newTestService(t, &failChat{t: t}, true)

	_, err := svc.IngestText(context.Background(), "moby", "ch.md", "The whale surfaces at dawn.")
	require.NoError(t, err)

	_, err = svc.Query(context.Background(), &QueryRequest{Question: "dinner plans?", BookID: "nowhere"})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testCollection, stats.Collection)
	assert.Equal(t, int64(1), stats.ChunkCount)
	assert.Equal(t, int64(1), stats.QueryCount)
	assert.Equal(t, 1, stats.LiveSessions)
}
