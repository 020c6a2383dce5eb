package biz

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookrag-io/bookrag/internal/model"
	"github.com/bookrag-io/bookrag/internal/pkg/textutil"
	"github.com/bookrag-io/bookrag/pkg/log"
	"github.com/bookrag-io/bookrag/pkg/utils/json"
)

// AnswerCache memoizes generated answers in Redis. A nil *AnswerCache is
// a no-op, so callers never branch on whether caching is configured.
type AnswerCache struct {
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string
}

// NewAnswerCache creates an AnswerCache.
func NewAnswerCache(client redis.UniversalClient, ttl time.Duration, keyPrefix string) *AnswerCache {
	return &AnswerCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
	}
}

// Get returns the cached answer for the input, or nil on a miss. Cache
// failures are logged and reported as misses.
func (c *AnswerCache) Get(ctx context.Context, input *QueryInput) *model.Answer {
	if c == nil {
		return nil
	}

	data, err := c.client.Get(ctx, c.key(input)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warnw("answer cache read failed", "err", err)
		}
		return nil
	}

	var answer model.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		log.Warnw("answer cache entry is corrupt", "err", err)
		return nil
	}
	return &answer
}

// Set stores an answer. Fallback answers are not cached: the book may
// gain the content later.
func (c *AnswerCache) Set(ctx context.Context, input *QueryInput, answer *model.Answer) {
	if c == nil || answer == nil || answer.IsFallback {
		return
	}

	// The session is caller-specific, not part of the cached value.
	cached := *answer
	cached.SessionID = ""

	data, err := json.Marshal(&cached)
	if err != nil {
		log.Warnw("failed to marshal answer for cache", "err", err)
		return
	}
	if err := c.client.Set(ctx, c.key(input), data, c.ttl).Err(); err != nil {
		log.Warnw("answer cache write failed", "err", err)
	}
}

// key derives the cache key from everything that shapes the answer.
func (c *AnswerCache) key(input *QueryInput) string {
	return c.keyPrefix + textutil.HashString(input.Question+"|"+input.BookID+"|"+input.SelectedText)
}
