package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookrag-io/bookrag/internal/bookrag/biz"
	"github.com/bookrag-io/bookrag/pkg/log"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

// queryTimeout bounds one question end to end: embedding, search and
// generation.
const queryTimeout = 60 * time.Second

// ChatHandler handles question answering and chat sessions.
type ChatHandler struct {
	service biz.Service
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(service biz.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// Query answers one question.
//
// POST /api/v1/chat
func (h *ChatHandler) Query(c *gin.Context) {
	var req biz.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	answer, err := h.service.Query(ctx, &req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			writeError(c, apierrors.ErrQueryTimeout)
			return
		}
		log.Errorw("query failed", "book_id", req.BookID, "err", err)
		writeError(c, err)
		return
	}

	writeSuccess(c, answer)
}

// CreateSessionRequest starts a new chat session.
type CreateSessionRequest struct {
	BookID string `json:"book_id"`
}

// CreateSession starts a session explicitly. Query creates one
// implicitly when no session is supplied.
//
// POST /api/v1/sessions
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	session := h.service.Sessions().Create(req.BookID)
	writeSuccess(c, session)
}

// GetSession returns a session with its history.
//
// GET /api/v1/sessions/:id
func (h *ChatHandler) GetSession(c *gin.Context) {
	session, err := h.service.Sessions().Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, session)
}

// DeleteSession ends a session.
//
// DELETE /api/v1/sessions/:id
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	h.service.Sessions().Delete(c.Param("id"))
	writeSuccess(c, nil)
}

// Stats returns service counters.
//
// GET /api/v1/stats
func (h *ChatHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	writeSuccess(c, stats)
}
