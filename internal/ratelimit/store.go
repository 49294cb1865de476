package ratelimit

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewStore 按配置创建计数存储。选择 redis 但没有可用连接时退回进程内存储
func NewStore(kind, dir string, client *redis.Client, logger *zap.Logger) (CounterStore, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(dir)
	case "redis":
		if client == nil {
			logger.Warn("Redis 不可用，限流计数改用进程内存储")
			return NewMemoryStore(), nil
		}
		return NewRedisStore(client), nil
	}
	return nil, fmt.Errorf("未知的限流存储: %s", kind)
}
