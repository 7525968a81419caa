package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis initializes a client from a redis:// URL or a host:port.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

// RedisStore keeps each room's history in a capped Redis list of JSON entries.
type RedisStore struct {
	client     redis.Cmdable
	maxPerRoom int64
}

func NewRedisStore(client redis.Cmdable, maxPerRoom int) *RedisStore {
	if maxPerRoom <= 0 {
		maxPerRoom = 100
	}
	return &RedisStore{client: client, maxPerRoom: int64(maxPerRoom)}
}

func roomKey(room string) string {
	return "morsechat:room:" + room + ":messages"
}

func (s *RedisStore) Save(ctx context.Context, msg Message) error {
	if msg.Room == "" {
		return ErrInvalidRoom
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	key := roomKey(msg.Room)
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, raw)
		p.LTrim(ctx, key, -s.maxPerRoom, -1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, room string, limit int) ([]Message, error) {
	if room == "" {
		return nil, ErrInvalidRoom
	}
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	entries, err := s.client.LRange(ctx, roomKey(room), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	out := make([]Message, 0, len(entries))
	for _, entry := range entries {
		var msg Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
