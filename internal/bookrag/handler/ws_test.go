package handler_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookrag-io/bookrag/internal/bookrag/handler"
	"github.com/bookrag-io/bookrag/internal/model"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/chat/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketChat(t *testing.T) {
	svc := newFakeService()
	svc.answer = &model.Answer{Text: "Ahab commands the Pequod."}
	defer svc.Close()

	srv := httptest.NewServer(newTestRouter(t, svc, nil))
	defer srv.Close()

	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(handler.WSMessage{
		Type:     "question",
		Question: "Who commands the Pequod?",
		BookID:   "moby",
	}))

	var reply handler.WSMessage
	require.NoError(t, conn.ReadJSON(&reply))

	assert.Equal(t, "answer", reply.Type)
	require.NotNil(t, reply.Answer)
	assert.Equal(t, "Ahab commands the Pequod.", reply.Answer.Text)
	assert.NotEmpty(t, reply.Answer.SessionID)

	// A second question stays in the same session.
	sessionID := reply.Answer.SessionID
	require.NoError(t, conn.WriteJSON(handler.WSMessage{
		Type:     "question",
		Question: "And the ship?",
	}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, sessionID, reply.Answer.SessionID)
}

func TestWebSocketRejectsUnknownType(t *testing.T) {
	svc := newFakeService()
	svc.answer = &model.Answer{Text: "x"}
	defer svc.Close()

	srv := httptest.NewServer(newTestRouter(t, svc, nil))
	defer srv.Close()

	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(handler.WSMessage{Type: "ping"}))

	var reply handler.WSMessage
	require.NoError(t, conn.ReadJSON(&reply))

	assert.Equal(t, "error", reply.Type)
	assert.Equal(t, apierrors.ErrInvalidRequest.Code, reply.Code)
	assert.NotEmpty(t, reply.Error)
}

func TestWebSocketReportsQueryError(t *testing.T) {
	svc := newFakeService()
	svc.err = apierrors.ErrProvider.WithMessage("model overloaded")
	defer svc.Close()

	srv := httptest.NewServer(newTestRouter(t, svc, nil))
	defer srv.Close()

	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(handler.WSMessage{Type: "question", Question: "q"}))

	var reply handler.WSMessage
	require.NoError(t, conn.ReadJSON(&reply))

	assert.Equal(t, "error", reply.Type)
	assert.Equal(t, apierrors.ErrProvider.Code, reply.Code)
}
