package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookrag-io/bookrag/internal/model"
	dbopts "github.com/bookrag-io/bookrag/pkg/options/database"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

func newTestChapterStore(t *testing.T) *ChapterStore {
	t.Helper()
	db, err := NewDB(&dbopts.Options{Path: ":memory:", AutoMigrate: true})
	require.NoError(t, err)
	return NewChapterStore(db)
}

func TestChapterCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestChapterStore(t)

	ch := &model.Chapter{BookID: "book-1", Number: 1, Title: "Introduction"}
	require.NoError(t, s.Create(ctx, ch))
	require.NotZero(t, ch.ID)

	got, err := s.Get(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, "Introduction", got.Title)

	got.Summary = "Opening chapter."
	require.NoError(t, s.Update(ctx, got))

	got, err = s.Get(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, "Opening chapter.", got.Summary)

	require.NoError(t, s.Delete(ctx, ch.ID))
	_, err = s.Get(ctx, ch.ID)
	assert.ErrorIs(t, err, apierrors.ErrChapterNotFound)
}

func TestChapterListOrdered(t *testing.T) {
	ctx := context.Background()
	s := newTestChapterStore(t)

	require.NoError(t, s.Create(ctx, &model.Chapter{BookID: "book-1", Number: 2, Title: "Second"}))
	require.NoError(t, s.Create(ctx, &model.Chapter{BookID: "book-1", Number: 1, Title: "First"}))
	require.NoError(t, s.Create(ctx, &model.Chapter{BookID: "book-2", Number: 1, Title: "Other book"}))

	chapters, err := s.List(ctx, "book-1")
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, "First", chapters[0].Title)
	assert.Equal(t, "Second", chapters[1].Title)
}

func TestDeleteMissingChapter(t *testing.T) {
	s := newTestChapterStore(t)
	err := s.Delete(context.Background(), 9999)
	assert.ErrorIs(t, err, apierrors.ErrChapterNotFound)
}

func TestQueryLog(t *testing.T) {
	ctx := context.Background()
	s := newTestChapterStore(t)

	require.NoError(t, s.RecordQuery(ctx, &model.QueryLog{
		SessionID: "sess-1",
		BookID:    "book-1",
		Question:  "What is chapter one about?",
		LatencyMS: 120,
	}))

	count, err := s.QueryCount(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
