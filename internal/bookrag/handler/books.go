package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookrag-io/bookrag/internal/bookrag/store"
	"github.com/bookrag-io/bookrag/internal/model"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

// ChapterHandler handles the chapter catalog.
type ChapterHandler struct {
	chapters *store.ChapterStore
}

// NewChapterHandler creates a ChapterHandler.
func NewChapterHandler(chapters *store.ChapterStore) *ChapterHandler {
	return &ChapterHandler{chapters: chapters}
}

// ChapterRequest creates or updates a chapter. The book comes from the
// route on creation.
type ChapterRequest struct {
	BookID   string `json:"book_id"`
	Number   int    `json:"number"`
	Title    string `json:"title" binding:"required"`
	Summary  string `json:"summary"`
	FilePath string `json:"file_path"`
}

// List returns the chapters of a book ordered by number.
//
// GET /api/v1/books/:book/chapters
func (h *ChapterHandler) List(c *gin.Context) {
	chapters, err := h.chapters.List(c.Request.Context(), c.Param("book"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, chapters)
}

// Get returns one chapter.
//
// GET /api/v1/chapters/:id
func (h *ChapterHandler) Get(c *gin.Context) {
	id, ok := chapterID(c)
	if !ok {
		return
	}

	chapter, err := h.chapters.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, chapter)
}

// Create adds a chapter to a book's catalog.
//
// POST /api/v1/books/:book/chapters
func (h *ChapterHandler) Create(c *gin.Context) {
	var req ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	chapter := &model.Chapter{
		BookID:   c.Param("book"),
		Number:   req.Number,
		Title:    req.Title,
		Summary:  req.Summary,
		FilePath: req.FilePath,
	}
	if err := h.chapters.Create(c.Request.Context(), chapter); err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, chapter)
}

// Update replaces a chapter's fields.
//
// PUT /api/v1/chapters/:id
func (h *ChapterHandler) Update(c *gin.Context) {
	id, ok := chapterID(c)
	if !ok {
		return
	}

	var req ChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	chapter, err := h.chapters.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	if req.BookID != "" {
		chapter.BookID = req.BookID
	}
	chapter.Number = req.Number
	chapter.Title = req.Title
	chapter.Summary = req.Summary
	chapter.FilePath = req.FilePath
	if err := h.chapters.Update(c.Request.Context(), chapter); err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, chapter)
}

// Delete removes a chapter.
//
// DELETE /api/v1/chapters/:id
func (h *ChapterHandler) Delete(c *gin.Context) {
	id, ok := chapterID(c)
	if !ok {
		return
	}

	if err := h.chapters.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, nil)
}

func chapterID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, apierrors.ErrInvalidRequest.WithMessage("chapter id must be a number"))
		return 0, false
	}
	return uint(id), true
}
