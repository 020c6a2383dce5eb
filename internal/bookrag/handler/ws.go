package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/bookrag-io/bookrag/internal/bookrag/biz"
	"github.com/bookrag-io/bookrag/internal/model"
	"github.com/bookrag-io/bookrag/pkg/log"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

const (
	// wsWriteWait bounds a single message write.
	wsWriteWait = 10 * time.Second

	// wsIdleWait closes connections with no question traffic.
	wsIdleWait = 5 * time.Minute
)

// WSMessage is one message on the chat socket, in either direction.
// Clients send type "question"; the server replies with "answer" or
// "error".
type WSMessage struct {
	Type         string `json:"type"`
	Question     string `json:"question,omitempty"`
	BookID       string `json:"book_id,omitempty"`
	SelectedText string `json:"selected_text,omitempty"`
	SessionID    string `json:"session_id,omitempty"`

	Answer *model.Answer `json:"answer,omitempty"`
	Code   int           `json:"code,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// WSHandler serves the WebSocket chat endpoint.
type WSHandler struct {
	service  biz.Service
	upgrader websocket.Upgrader
}

// NewWSHandler creates a WSHandler.
func NewWSHandler(service biz.Service) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The API is token-authenticated; cross-origin pages are fine.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Chat upgrades the connection and answers questions until the client
// goes away. One session spans the connection: the first answer's
// session is reused unless the client sends its own.
//
// GET /api/v1/chat/ws
func (h *WSHandler) Chat(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warnw("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	sessionID := ""
	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleWait))

		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debugw("websocket closed", "err", err)
			}
			return
		}

		if msg.Type != "question" {
			h.writeError(conn, apierrors.ErrInvalidRequest.WithMessagef("unsupported message type %q", msg.Type))
			continue
		}

		if msg.SessionID != "" {
			sessionID = msg.SessionID
		}

		answer, err := h.answer(c.Request.Context(), &msg, sessionID)
		if err != nil {
			h.writeError(conn, err)
			continue
		}
		sessionID = answer.SessionID

		if err := h.write(conn, WSMessage{Type: "answer", Answer: answer}); err != nil {
			return
		}
	}
}

func (h *WSHandler) answer(parent context.Context, msg *WSMessage, sessionID string) (*model.Answer, error) {
	ctx, cancel := context.WithTimeout(parent, queryTimeout)
	defer cancel()

	answer, err := h.service.Query(ctx, &biz.QueryRequest{
		Question:     msg.Question,
		BookID:       msg.BookID,
		SelectedText: msg.SelectedText,
		SessionID:    sessionID,
	})
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return nil, apierrors.ErrQueryTimeout
	}
	return answer, err
}

func (h *WSHandler) write(conn *websocket.Conn, msg WSMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.Debugw("websocket write failed", "err", err)
		return err
	}
	return nil
}

func (h *WSHandler) writeError(conn *websocket.Conn, err error) {
	errno := apierrors.FromError(err)
	_ = h.write(conn, WSMessage{Type: "error", Code: errno.Code, Error: errno.Message})
}
