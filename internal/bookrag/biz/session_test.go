package biz

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/bookrag-io/bookrag/pkg/utils/errors"
)

func TestSessionCreateAndGet(t *testing.T) {
	m := NewSessionManager(time.Minute)
	defer m.Close()

	session := m.Create("moby")
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "moby", session.BookID)

	got, err := m.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestSessionGetUnknown(t *testing.T) {
	m := NewSessionManager(time.Minute)
	defer m.Close()

	_, err := m.Get("no-such-session")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrSessionNotFound))
}

func TestSessionExpiry(t *testing.T) {
	m := NewSessionManager(20 * time.Millisecond)
	defer m.Close()

	session := m.Create("moby")
	time.Sleep(50 * time.Millisecond)

	_, err := m.Get(session.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apierrors.ErrSessionNotFound))
}

func TestSessionActivityRenews(t *testing.T) {
	m := NewSessionManager(60 * time.Millisecond)
	defer m.Close()

	session := m.Create("moby")
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		_, err := m.Get(session.ID)
		require.NoError(t, err, "activity must keep the session alive")
	}
}

func TestSessionHistoryIsBounded(t *testing.T) {
	m := NewSessionManager(time.Minute)
	defer m.Close()

	session := m.Create("moby")
	for i := 0; i < maxHistoryLength+5; i++ {
		require.NoError(t, m.Append(session.ID, "q", "a"))
	}

	got, err := m.Get(session.ID)
	require.NoError(t, err)
	assert.Len(t, got.History, maxHistoryLength)
}

func TestSessionAppendRecordsExchange(t *testing.T) {
	m := NewSessionManager(time.Minute)
	defer m.Close()

	session := m.Create("moby")
	require.NoError(t, m.Append(session.ID, "Who is Ahab?", "The captain."))

	got, err := m.Get(session.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 1)
	assert.Equal(t, "Who is Ahab?", got.History[0].Question)
	assert.Equal(t, "The captain.", got.History[0].Answer)
	assert.False(t, got.History[0].AskedAt.IsZero())
}

func TestSessionDelete(t *testing.T) {
	m := NewSessionManager(time.Minute)
	defer m.Close()

	session := m.Create("moby")
	assert.Equal(t, 1, m.Len())

	m.Delete(session.ID)
	assert.Zero(t, m.Len())

	_, err := m.Get(session.ID)
	assert.Error(t, err)
}
