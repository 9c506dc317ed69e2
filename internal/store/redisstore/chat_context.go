package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/suPer8Hu/mindease/internal/ai"
)

const chatContextPrefix = "chatctx:"

// ContextStore keeps each owner's model window in a capped Redis list.
type ContextStore struct {
	s     *Store
	limit int64
	ttl   time.Duration
}

func (s *Store) ChatContexts(limit int, ttl time.Duration) *ContextStore {
	if limit <= 0 {
		limit = 16
	}
	return &ContextStore{s: s, limit: int64(limit), ttl: ttl}
}

func (c *ContextStore) key(k string) string { return chatContextPrefix + k }

func (c *ContextStore) Window(ctx context.Context, key string) ([]ai.Message, error) {
	raw, err := c.s.rdb.LRange(ctx, c.key(key), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]ai.Message, 0, len(raw))
	for _, r := range raw {
		var m ai.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			// skip entries written by an incompatible version
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *ContextStore) Append(ctx context.Context, key string, msgs ...ai.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	vals := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		vals = append(vals, b)
	}

	k := c.key(key)
	_, err := c.s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, k, vals...)
		p.LTrim(ctx, k, -c.limit, -1)
		if c.ttl > 0 {
			p.Expire(ctx, k, c.ttl)
		}
		return nil
	})
	return err
}

func (c *ContextStore) Clear(ctx context.Context, key string) error {
	return c.s.rdb.Del(ctx, c.key(key)).Err()
}
