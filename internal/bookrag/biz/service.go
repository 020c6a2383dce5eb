package biz

import (
	"context"
	"strings"
	"time"

	"github.com/bookrag-io/bookrag/internal/bookrag/store"
	"github.com/bookrag-io/bookrag/internal/model"
	"github.com/bookrag-io/bookrag/pkg/log"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

// QueryRequest is one question against the book.
type QueryRequest struct {
	Question     string `json:"question" binding:"required"`
	BookID       string `json:"book_id"`
	SelectedText string `json:"selected_text"`
	SessionID    string `json:"session_id"`
}

// Service is the bookrag business facade.
type Service interface {
	// Query answers a question with citations. When the session ID is
	// empty a new session is created; either way the answer carries the
	// session ID to continue with.
	Query(ctx context.Context, req *QueryRequest) (*model.Answer, error)

	// IngestDirectory ingests every markdown file under dir into the book.
	IngestDirectory(ctx context.Context, bookID, dir string) (*model.IngestReport, error)

	// IngestText ingests one markdown document.
	IngestText(ctx context.Context, bookID, sourcePath, content string) (int, error)

	// ResetCollection drops and recreates the vector collection.
	ResetCollection(ctx context.Context) error

	// Stats reports service counters.
	Stats(ctx context.Context) (*model.Stats, error)

	// Sessions exposes the session registry.
	Sessions() *SessionManager

	// Close releases background resources.
	Close()
}

// ServiceConfig configures the service facade.
type ServiceConfig struct {
	// Collection is the vector collection name.
	Collection string
	// EmbeddingDim is the collection's vector dimension.
	EmbeddingDim int
	// SessionTTL is the idle session lifetime.
	SessionTTL time.Duration
}

type service struct {
	indexer     *Indexer
	retriever   *Retriever
	generator   *Generator
	sessions    *SessionManager
	answerCache *AnswerCache
	vectorStore store.VectorStore
	chapters    *store.ChapterStore
	config      *ServiceConfig
}

var _ Service = (*service)(nil)

// NewService wires the pipeline components into a Service. answerCache
// may be nil when caching is disabled.
func NewService(
	indexer *Indexer,
	retriever *Retriever,
	generator *Generator,
	answerCache *AnswerCache,
	vectorStore store.VectorStore,
	chapters *store.ChapterStore,
	config *ServiceConfig,
) Service {
	ttl := config.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &service{
		indexer:     indexer,
		retriever:   retriever,
		generator:   generator,
		sessions:    NewSessionManager(ttl),
		answerCache: answerCache,
		vectorStore: vectorStore,
		chapters:    chapters,
		config:      config,
	}
}

func (s *service) Query(ctx context.Context, req *QueryRequest) (*model.Answer, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, apierrors.ErrInvalidRequest.WithMessage("question is required")
	}

	session, err := s.resolveSession(req)
	if err != nil {
		return nil, err
	}

	input := &QueryInput{
		Question:     question,
		BookID:       req.BookID,
		SelectedText: req.SelectedText,
	}

	start := time.Now()

	answer := s.answerCache.Get(ctx, input)
	if answer == nil {
		answer, err = s.answer(ctx, input)
		if err != nil {
			return nil, err
		}
		s.answerCache.Set(ctx, input, answer)
	}
	answer.SessionID = session.ID

	if err := s.sessions.Append(session.ID, question, answer.Text); err != nil {
		// The session expired mid-query; the answer is still valid.
		log.Warnw("failed to record exchange", "session_id", session.ID, "err", err)
	}

	s.logQuery(ctx, session.ID, req.BookID, question, answer, time.Since(start))
	return answer, nil
}

// answer produces the answer for one query. A highlighted passage is
// the sole context when present; otherwise the index is searched.
func (s *service) answer(ctx context.Context, input *QueryInput) (*model.Answer, error) {
	if strings.TrimSpace(input.SelectedText) != "" {
		return s.generator.GenerateFromSelection(ctx, input.Question, input.SelectedText)
	}

	results, err := s.retriever.Retrieve(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(ctx, input.Question, results)
}

func (s *service) resolveSession(req *QueryRequest) (*Session, error) {
	if req.SessionID == "" {
		return s.sessions.Create(req.BookID), nil
	}
	return s.sessions.Get(req.SessionID)
}

// logQuery records the query for analytics. Failures are logged, never
// surfaced: answering the reader matters more than the audit trail.
func (s *service) logQuery(ctx context.Context, sessionID, bookID, question string, answer *model.Answer, elapsed time.Duration) {
	if s.chapters == nil {
		return
	}

	entry := &model.QueryLog{
		SessionID:  sessionID,
		BookID:     bookID,
		Question:   question,
		IsFallback: answer.IsFallback,
		LatencyMS:  elapsed.Milliseconds(),
	}
	if err := s.chapters.RecordQuery(ctx, entry); err != nil {
		log.Warnw("failed to record query log", "err", err)
	}
}

func (s *service) IngestDirectory(ctx context.Context, bookID, dir string) (*model.IngestReport, error) {
	return s.indexer.IngestDirectory(ctx, bookID, dir)
}

func (s *service) IngestText(ctx context.Context, bookID, sourcePath, content string) (int, error) {
	return s.indexer.IngestText(ctx, bookID, sourcePath, content)
}

func (s *service) ResetCollection(ctx context.Context) error {
	return s.vectorStore.EnsureCollection(ctx, &store.CollectionConfig{
		Name:        s.config.Collection,
		Description: "Embedded book content",
		Dimension:   s.config.EmbeddingDim,
		Recreate:    true,
	})
}

func (s *service) Stats(ctx context.Context) (*model.Stats, error) {
	chunks, err := s.vectorStore.Count(ctx, s.config.Collection)
	if err != nil {
		return nil, apierrors.ErrVectorStore.WithCause(err)
	}

	stats := &model.Stats{
		Collection:   s.config.Collection,
		ChunkCount:   chunks,
		LiveSessions: s.sessions.Len(),
	}
	if s.chapters != nil {
		queries, err := s.chapters.QueryCount(ctx)
		if err != nil {
			return nil, apierrors.ErrDatabase.WithCause(err)
		}
		stats.QueryCount = queries
	}
	return stats, nil
}

func (s *service) Sessions() *SessionManager {
	return s.sessions
}

func (s *service) Close() {
	s.sessions.Close()
}
