package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookrag-io/bookrag/internal/bookrag/store"
)

// probeTimeout bounds each component probe.
const probeTimeout = 5 * time.Second

// HealthHandler reports service liveness and component health.
type HealthHandler struct {
	collection  string
	vectorStore store.VectorStore
	chapters    *store.ChapterStore
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(collection string, vectorStore store.VectorStore, chapters *store.ChapterStore) *HealthHandler {
	return &HealthHandler{
		collection:  collection,
		vectorStore: vectorStore,
		chapters:    chapters,
	}
}

// HealthStatus is the health probe response.
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Timestamp  time.Time         `json:"timestamp"`
}

// Healthz probes the vector store and the database.
//
// GET /healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	status := HealthStatus{
		Status:     "ok",
		Components: map[string]string{},
		Timestamp:  time.Now(),
	}

	if _, err := h.vectorStore.Count(ctx, h.collection); err != nil {
		status.Status = "degraded"
		status.Components["vector_store"] = err.Error()
	} else {
		status.Components["vector_store"] = "ok"
	}

	if h.chapters != nil {
		if _, err := h.chapters.QueryCount(ctx); err != nil {
			status.Status = "degraded"
			status.Components["database"] = err.Error()
		} else {
			status.Components["database"] = "ok"
		}
	}

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
