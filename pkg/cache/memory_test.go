package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute)
	c.Set("a", 1)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := NewTTLCache[string, int](10 * time.Millisecond)
	c.Set("a", 1)

	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTouchRenewsDeadline(t *testing.T) {
	c := NewTTLCache[string, int](50 * time.Millisecond)
	c.Set("a", 1)

	for i := 0; i < 3; i++ {
		time.Sleep(30 * time.Millisecond)
		_, ok := c.Touch("a")
		require.True(t, ok, "entry should survive while being touched")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := NewTTLCache[string, int](0)
	c.Set("a", 1)

	time.Sleep(10 * time.Millisecond)

	_, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 0, c.PurgeExpired())
}

func TestPurgeExpired(t *testing.T) {
	c := NewTTLCache[string, int](10 * time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)

	time.Sleep(25 * time.Millisecond)
	c.Set("c", 3)

	assert.Equal(t, 2, c.PurgeExpired())
	_, ok := c.Get("c")
	assert.True(t, ok)
}

func TestDelete(t *testing.T) {
	c := NewTTLCache[string, int](time.Minute)
	c.Set("a", 1)
	c.Delete("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
}
