// Package router assembles the bookrag HTTP routes.
package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookrag-io/bookrag/internal/bookrag/handler"
	"github.com/bookrag-io/bookrag/pkg/log"
	"github.com/bookrag-io/bookrag/pkg/security/auth/jwt"
)

// Handlers collects the handlers mounted on the router.
type Handlers struct {
	Chat     *handler.ChatHandler
	WS       *handler.WSHandler
	Ingest   *handler.IngestHandler
	Chapters *handler.ChapterHandler
	Health   *handler.HealthHandler

	// Auth is nil when authentication is disabled; the token endpoint
	// and the middleware are then not mounted.
	Auth *handler.AuthHandler

	// Verifier guards /api/v1 when set.
	Verifier *jwt.JWT
}

// New builds the gin engine with all routes registered.
func New(h *Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	engine.GET("/healthz", h.Health.Healthz)

	v1 := engine.Group("/api/v1")

	if h.Auth != nil {
		v1.POST("/auth/token", h.Auth.Token)
	}
	if h.Verifier != nil {
		v1.Use(handler.AuthMiddleware(h.Verifier))
	}

	v1.POST("/chat", h.Chat.Query)
	v1.GET("/chat/ws", h.WS.Chat)

	v1.POST("/sessions", h.Chat.CreateSession)
	v1.GET("/sessions/:id", h.Chat.GetSession)
	v1.DELETE("/sessions/:id", h.Chat.DeleteSession)

	v1.GET("/stats", h.Chat.Stats)

	v1.GET("/books/:book/chapters", h.Chapters.List)
	v1.POST("/books/:book/chapters", h.Chapters.Create)
	v1.GET("/chapters/:id", h.Chapters.Get)
	v1.PUT("/chapters/:id", h.Chapters.Update)
	v1.DELETE("/chapters/:id", h.Chapters.Delete)

	admin := v1.Group("/admin")
	admin.POST("/ingest", h.Ingest.IngestDirectory)
	admin.POST("/ingest/text", h.Ingest.IngestText)
	admin.POST("/collection/reset", h.Ingest.ResetCollection)

	return engine
}

// requestLogger logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client", c.ClientIP(),
		)
	}
}
