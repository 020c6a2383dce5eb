package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bookrag-io/bookrag/internal/bookrag/biz"
	"github.com/bookrag-io/bookrag/pkg/log"
)

// IngestHandler handles content ingestion and collection administration.
type IngestHandler struct {
	service biz.Service
}

// NewIngestHandler creates an IngestHandler.
func NewIngestHandler(service biz.Service) *IngestHandler {
	return &IngestHandler{service: service}
}

// IngestDirectoryRequest ingests a directory of markdown files.
type IngestDirectoryRequest struct {
	BookID    string `json:"book_id" binding:"required"`
	Directory string `json:"directory" binding:"required"`
}

// IngestDirectory ingests every markdown file under a directory.
//
// POST /api/v1/admin/ingest
func (h *IngestHandler) IngestDirectory(c *gin.Context) {
	var req IngestDirectoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	report, err := h.service.IngestDirectory(c.Request.Context(), req.BookID, req.Directory)
	if err != nil {
		log.Errorw("directory ingestion failed", "book_id", req.BookID, "dir", req.Directory, "err", err)
		writeError(c, err)
		return
	}

	writeSuccess(c, report)
}

// IngestTextRequest ingests one markdown document.
type IngestTextRequest struct {
	BookID     string `json:"book_id" binding:"required"`
	SourcePath string `json:"source_path" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// IngestTextResponse reports the chunks written for one document.
type IngestTextResponse struct {
	ChunksWritten int `json:"chunks_written"`
}

// IngestText ingests a single markdown document from the request body.
//
// POST /api/v1/admin/ingest/text
func (h *IngestHandler) IngestText(c *gin.Context) {
	var req IngestTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	written, err := h.service.IngestText(c.Request.Context(), req.BookID, req.SourcePath, req.Content)
	if err != nil {
		log.Errorw("text ingestion failed", "book_id", req.BookID, "source", req.SourcePath, "err", err)
		writeError(c, err)
		return
	}

	writeSuccess(c, IngestTextResponse{ChunksWritten: written})
}

// ResetCollection drops and recreates the vector collection. All
// ingested content is lost.
//
// POST /api/v1/admin/collection/reset
func (h *IngestHandler) ResetCollection(c *gin.Context) {
	if err := h.service.ResetCollection(c.Request.Context()); err != nil {
		log.Errorw("collection reset failed", "err", err)
		writeError(c, err)
		return
	}
	writeSuccess(c, nil)
}
