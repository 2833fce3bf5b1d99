package history

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "llmchat:history"

// RedisStore keeps each record as a JSON string plus a sorted-set index by creation time.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to addr, which is either host:port or a redis:// URL.
func NewRedisStore(addr, prefix string) (*RedisStore, error) {
	opts, err := parseRedisAddr(addr)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	c := redis.NewClient(opts)
	if err := c.Ping(context.Background()).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return &RedisStore{client: c, prefix: prefix}, nil
}

func parseRedisAddr(addr string) (*redis.Options, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

func (s *RedisStore) recordKey(id string) string { return s.prefix + ":rec:" + id }
func (s *RedisStore) indexKey() string          { return s.prefix + ":index" }

func (s *RedisStore) Create(ctx context.Context, rec *Record) error {
	prepare(rec)
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.recordKey(rec.ID), b, 0)
		p.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(rec.CreatedAt.UnixMilli()), Member: rec.ID})
		return nil
	})
	return err
}

func (s *RedisStore) Get(ctx context.Context, id string) (Record, error) {
	b, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	var r Record
	err = json.Unmarshal(b, &r)
	return r, err
}

func (s *RedisStore) List(ctx context.Context, limit int) ([]Record, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, stop).Result()
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.recordKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, s.indexKey()).Result()
	return int(n), err
}

func (s *RedisStore) UpdateFeedback(ctx context.Context, id string, fb FeedbackUpdate) error {
	key := s.recordKey(id)
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var r Record
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		r.apply(fb)
		nb, err := json.Marshal(r)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, nb, 0)
			return nil
		})
		return err
	}, key)
}

func (s *RedisStore) DeleteAll(ctx context.Context) error {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.recordKey(id))
	}
	keys = append(keys, s.indexKey())
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
