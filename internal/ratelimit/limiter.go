// Package ratelimit 实现按分钟对齐的固定窗口计数，用于限制单个访客产生的访问日志量。
//
// 计数的读改写没有加锁，也不要求存储原子自增：同一访客在同一分钟内的并发请求
// 可能读到旧值，从而少量超出上限。存储出错时一律放行。
package ratelimit

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"go.uber.org/zap"
)

// Window 计数窗口长度
const Window = time.Minute

// CounterStore 保存每个访客当前窗口的计数。不存在的 key 返回 (0, 0, nil)
type CounterStore interface {
	Get(ctx context.Context, key string) (bucket int64, count int, err error)
	Set(ctx context.Context, key string, bucket int64, count int) error
}

// Limiter 固定窗口限流器
type Limiter struct {
	store  CounterStore
	salt   string
	now    func() time.Time
	logger *zap.Logger
}

// Option 配置 Limiter
type Option func(*Limiter)

// WithClock 替换时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithLogger 设置日志记录器
func WithLogger(logger *zap.Logger) Option {
	return func(l *Limiter) { l.logger = logger.Named("ratelimit") }
}

func New(store CounterStore, salt string, opts ...Option) *Limiter {
	l := &Limiter{
		store:  store,
		salt:   salt,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow 判断 ip 在当前分钟内是否还能记录一次访问，允许时计数加一。
// limitPerMinute <= 0 表示不限流，不会访问存储。
func (l *Limiter) Allow(ctx context.Context, ip string, limitPerMinute int) bool {
	if limitPerMinute <= 0 {
		return true
	}

	bucket := Bucket(l.now())
	key := Key(l.salt, ip)

	storedBucket, count, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("读取限流计数失败，放行", zap.Error(err))
		return true
	}
	if storedBucket != bucket {
		count = 0
	}
	if count >= limitPerMinute {
		return false
	}

	if err := l.store.Set(ctx, key, bucket, count+1); err != nil {
		l.logger.Warn("写入限流计数失败", zap.Error(err))
	}
	return true
}

// Bucket 返回 t 所在的分钟序号
func Bucket(t time.Time) int64 {
	return t.Unix() / int64(Window/time.Second)
}

// Key 由盐和 IP 计算存储 key，避免在文件名或缓存 key 中出现原始 IP
func Key(salt, ip string) string {
	sum := sha1.Sum([]byte(salt + ip))
	return hex.EncodeToString(sum[:])
}
