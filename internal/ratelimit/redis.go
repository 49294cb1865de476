package ratelimit

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore 计数保存在 Redis hash 中，多实例部署时共享
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Get(ctx context.Context, key string) (int64, int, error) {
	vals, err := s.client.HMGet(ctx, s.prefix+key, "bucket", "count").Result()
	if err != nil {
		return 0, 0, err
	}
	bucket, _ := parseInt(vals[0])
	count, _ := parseInt(vals[1])
	return bucket, int(count), nil
}

func (s *RedisStore) Set(ctx context.Context, key string, bucket int64, count int) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.prefix+key, "bucket", bucket, "count", count)
		pipe.Expire(ctx, s.prefix+key, 2*Window)
		return nil
	})
	return err
}

func parseInt(v interface{}) (int64, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

var _ CounterStore = (*RedisStore)(nil)
