package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shortlink/internal/model"
)

const (
	slugKeyPrefix    = "shortlink:slug:"
	targetsKeyPrefix = "shortlink:targets:"
)

// LinkSource 缓存包装的底层查询
type LinkSource interface {
	FindBySlug(ctx context.Context, slug string) (*model.Link, error)
	ActiveTargetsFor(ctx context.Context, linkID uint) ([]model.Target, error)
}

// CachedLinkRepository 在跳转查询前加一层 Redis 缓存。
// Redis 出错时直接查库，不影响跳转。
type CachedLinkRepository struct {
	base   LinkSource
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedLinkRepository(base LinkSource, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedLinkRepository {
	return &CachedLinkRepository{
		base:   base,
		redis:  client,
		ttl:    ttl,
		logger: logger.Named("link_cache"),
	}
}

func slugKey(slug string) string {
	return slugKeyPrefix + slug
}

func targetsKey(linkID uint) string {
	return fmt.Sprintf("%s%d", targetsKeyPrefix, linkID)
}

func (c *CachedLinkRepository) FindBySlug(ctx context.Context, slug string) (*model.Link, error) {
	var link model.Link
	if c.get(ctx, slugKey(slug), &link) {
		return &link, nil
	}

	found, err := c.base.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.set(ctx, slugKey(slug), found)
	return found, nil
}

func (c *CachedLinkRepository) ActiveTargetsFor(ctx context.Context, linkID uint) ([]model.Target, error) {
	var targets []model.Target
	if c.get(ctx, targetsKey(linkID), &targets) {
		return targets, nil
	}

	targets, err := c.base.ActiveTargetsFor(ctx, linkID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, targetsKey(linkID), targets)
	return targets, nil
}

// Invalidate 删除链接和目标的缓存，后台修改数据后调用
func (c *CachedLinkRepository) Invalidate(ctx context.Context, slug string, linkID uint) {
	keys := []string{targetsKey(linkID)}
	if slug != "" {
		keys = append(keys, slugKey(slug))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("清除链接缓存失败", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *CachedLinkRepository) get(ctx context.Context, key string, dest interface{}) bool {
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("读取链接缓存失败", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		c.logger.Warn("链接缓存内容无法解析", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedLinkRepository) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("写入链接缓存失败", zap.String("key", key), zap.Error(err))
	}
}
