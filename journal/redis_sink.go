package journal

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisKey    = "nfcgate:events"
	DefaultRedisMaxLen = 1000
)

// RedisSink pushes entries as JSON onto a capped Redis list, newest first.
type RedisSink struct {
	rdb    *redis.Client
	key    string
	maxLen int64
}

func NewRedisSink(rdb *redis.Client, key string, maxLen int64) *RedisSink {
	if key == "" {
		key = DefaultRedisKey
	}
	if maxLen <= 0 {
		maxLen = DefaultRedisMaxLen
	}
	return &RedisSink{rdb: rdb, key: key, maxLen: maxLen}
}

// DialRedis parses url, connects and pings.
func DialRedis(ctx context.Context, url, key string, maxLen int64) (*RedisSink, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisSink(rdb, key, maxLen), nil
}

func (s *RedisSink) Record(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, data)
		pipe.LTrim(ctx, s.key, 0, s.maxLen-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("journal push: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *RedisSink) Recent(ctx context.Context, n int64) ([]Entry, error) {
	raw, err := s.rdb.LRange(ctx, s.key, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("journal decode: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *RedisSink) Close() error { return s.rdb.Close() }
