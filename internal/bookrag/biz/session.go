package biz

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookrag-io/bookrag/pkg/cache"
	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

const (
	// DefaultSessionTTL is how long an idle session survives.
	DefaultSessionTTL = 30 * time.Minute

	// maxHistoryLength bounds the per-session exchange history.
	maxHistoryLength = 20

	// janitorInterval is how often expired sessions are purged.
	janitorInterval = time.Minute
)

// Exchange is one question/answer pair in a session.
type Exchange struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// Session is one reader's conversation.
type Session struct {
	ID        string     `json:"id"`
	BookID    string     `json:"book_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	History   []Exchange `json:"history"`
}

// SessionManager tracks chat sessions with an idle TTL. Any activity on
// a session renews it.
type SessionManager struct {
	mu       sync.Mutex
	sessions *cache.TTLCache[string, *Session]
	stop     chan struct{}
}

// NewSessionManager creates a SessionManager and starts its expiry
// janitor. Close must be called to stop it.
func NewSessionManager(ttl time.Duration) *SessionManager {
	m := &SessionManager{
		sessions: cache.NewTTLCache[string, *Session](ttl),
		stop:     make(chan struct{}),
	}
	m.sessions.StartJanitor(janitorInterval, m.stop)
	return m
}

// Create starts a new session.
func (m *SessionManager) Create(bookID string) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		BookID:    bookID,
		CreatedAt: time.Now(),
	}
	m.sessions.Set(session.ID, session)
	return session
}

// Get returns the session and renews its TTL.
func (m *SessionManager) Get(id string) (*Session, error) {
	session, ok := m.sessions.Touch(id)
	if !ok {
		return nil, apierrors.ErrSessionNotFound.WithMessagef("session %s not found or expired", id)
	}
	return session, nil
}

// Append records an exchange on the session, renewing it. History is
// bounded; the oldest exchange falls off first.
func (m *SessionManager) Append(id, question, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions.Touch(id)
	if !ok {
		return apierrors.ErrSessionNotFound.WithMessagef("session %s not found or expired", id)
	}

	session.History = append(session.History, Exchange{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	})
	if len(session.History) > maxHistoryLength {
		session.History = session.History[len(session.History)-maxHistoryLength:]
	}
	return nil
}

// Delete removes a session.
func (m *SessionManager) Delete(id string) {
	m.sessions.Delete(id)
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	return m.sessions.Len()
}

// Close stops the expiry janitor.
func (m *SessionManager) Close() {
	close(m.stop)
}
