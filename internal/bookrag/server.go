// Package bookrag provides the bookrag server implementation.
package bookrag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bookrag-io/bookrag/internal/bookrag/biz"
	"github.com/bookrag-io/bookrag/internal/bookrag/handler"
	"github.com/bookrag-io/bookrag/internal/bookrag/router"
	"github.com/bookrag-io/bookrag/internal/bookrag/store"
	"github.com/bookrag-io/bookrag/pkg/component/milvus"
	"github.com/bookrag-io/bookrag/pkg/llm"
	"github.com/bookrag-io/bookrag/pkg/log"
	authopts "github.com/bookrag-io/bookrag/pkg/options/auth"
	cacheopts "github.com/bookrag-io/bookrag/pkg/options/cache"
	dbopts "github.com/bookrag-io/bookrag/pkg/options/database"
	llmopts "github.com/bookrag-io/bookrag/pkg/options/llm"
	logopts "github.com/bookrag-io/bookrag/pkg/options/logger"
	milvusopts "github.com/bookrag-io/bookrag/pkg/options/milvus"
	ragopts "github.com/bookrag-io/bookrag/pkg/options/rag"
	httpopts "github.com/bookrag-io/bookrag/pkg/options/server/http"
	"github.com/bookrag-io/bookrag/pkg/security/auth/jwt"

	// Register LLM providers.
	_ "github.com/bookrag-io/bookrag/pkg/llm/huggingface"
	_ "github.com/bookrag-io/bookrag/pkg/llm/openai"
)

// Name is the name of the application.
const Name = "bookrag"

// Config contains application-related configurations.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	DatabaseOptions  *dbopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	RAGOptions       *ragopts.Options
	AuthOptions      *authopts.Options
	CacheOptions     *cacheopts.Options

	// MemoryStore swaps Milvus for the in-process vector store. Useful
	// for local development and tests; content does not survive restarts.
	MemoryStore bool

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration
}

// Server is the assembled bookrag server.
type Server struct {
	httpServer      *http.Server
	service         biz.Service
	vectorStore     store.VectorStore
	redisClose      func()
	shutdownTimeout time.Duration
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	cfg.LogOptions.AddInitialField("service.name", Name)
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.Infow("starting bookrag", "addr", cfg.HTTPOptions.Addr)

	vectorStore, err := cfg.newVectorStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := vectorStore.EnsureCollection(ctx, &store.CollectionConfig{
		Name:        cfg.RAGOptions.Collection,
		Description: "Embedded book content",
		Dimension:   cfg.RAGOptions.EmbeddingDim,
	}); err != nil {
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	db, err := store.NewDB(cfg.DatabaseOptions)
	if err != nil {
		return nil, err
	}
	chapters := store.NewChapterStore(db)
	log.Infow("database initialized", "path", cfg.DatabaseOptions.Path)

	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	log.Infow("embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
	)

	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	log.Infow("chat provider initialized",
		"provider", cfg.ChatOptions.Provider,
		"model", cfg.ChatOptions.Model,
	)

	answerCache, redisClose := cfg.newAnswerCache(ctx)

	service := biz.NewService(
		biz.NewIndexer(vectorStore, embedProvider, &biz.IndexerConfig{
			Collection:     cfg.RAGOptions.Collection,
			ChunkSize:      cfg.RAGOptions.ChunkSize,
			ChunkOverlap:   cfg.RAGOptions.ChunkOverlap,
			MinChunkSize:   cfg.RAGOptions.MinChunkSize,
			EmbedBatchSize: cfg.RAGOptions.EmbedBatchSize,
		}),
		biz.NewRetriever(vectorStore, embedProvider, &biz.RetrieverConfig{
			Collection:     cfg.RAGOptions.Collection,
			TopK:           cfg.RAGOptions.TopK,
			ScoreThreshold: cfg.RAGOptions.ScoreThreshold,
		}),
		biz.NewGenerator(chatProvider, &biz.GeneratorConfig{
			SystemPrompt: cfg.RAGOptions.SystemPrompt,
		}),
		answerCache,
		vectorStore,
		chapters,
		&biz.ServiceConfig{
			Collection:   cfg.RAGOptions.Collection,
			EmbeddingDim: cfg.RAGOptions.EmbeddingDim,
			SessionTTL:   biz.DefaultSessionTTL,
		},
	)

	handlers := &router.Handlers{
		Chat:     handler.NewChatHandler(service),
		WS:       handler.NewWSHandler(service),
		Ingest:   handler.NewIngestHandler(service),
		Chapters: handler.NewChapterHandler(chapters),
		Health:   handler.NewHealthHandler(cfg.RAGOptions.Collection, vectorStore, chapters),
	}

	if cfg.AuthOptions.Enabled {
		signer, err := jwt.New(
			jwt.WithKey(cfg.AuthOptions.Key),
			jwt.WithExpired(cfg.AuthOptions.Expired),
			jwt.WithIssuer(cfg.AuthOptions.Issuer),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize token signer: %w", err)
		}
		handlers.Auth = handler.NewAuthHandler(signer)
		handlers.Verifier = signer
		log.Infow("authentication enabled", "issuer", cfg.AuthOptions.Issuer)
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      router.New(handlers),
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
		IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
	}

	return &Server{
		httpServer:      httpServer,
		service:         service,
		vectorStore:     vectorStore,
		redisClose:      redisClose,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// newVectorStore builds the configured vector store backend.
func (cfg *Config) newVectorStore(ctx context.Context) (store.VectorStore, error) {
	if cfg.MemoryStore {
		log.Warnw("using in-memory vector store, content will not survive restarts")
		return store.NewMemoryStore(), nil
	}

	client, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}
	log.Infow("milvus client initialized", "address", cfg.MilvusOptions.Address)
	return store.NewMilvusStore(client, cfg.RAGOptions.EmbeddingDim), nil
}

// newAnswerCache builds the Redis answer cache when enabled. An
// unreachable Redis disables the cache instead of failing startup.
func (cfg *Config) newAnswerCache(ctx context.Context) (*biz.AnswerCache, func()) {
	if !cfg.CacheOptions.Enabled {
		log.Infow("answer cache disabled")
		return nil, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.CacheOptions.Addr,
		Password: cfg.CacheOptions.Password,
		DB:       cfg.CacheOptions.Database,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unreachable, answer cache disabled", "addr", cfg.CacheOptions.Addr, "err", err)
		_ = client.Close()
		return nil, nil
	}

	log.Infow("answer cache initialized", "addr", cfg.CacheOptions.Addr, "ttl", cfg.CacheOptions.TTL)
	return biz.NewAnswerCache(client, cfg.CacheOptions.TTL, cfg.CacheOptions.KeyPrefix),
		func() { _ = client.Close() }
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Infow("http server listening", "addr", s.httpServer.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	s.service.Close()
	if s.redisClose != nil {
		s.redisClose()
	}
	if err := s.vectorStore.Close(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("vector store close: %w", err))
	}

	return errors.Join(errs...)
}
