// Package recorder 保存跳转产生的访问记录。
//
// 写库失败只记日志，不会影响已经发出的跳转。
package recorder

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"shortlink/internal/model"
)

// writeTimeout 单条记录写库的超时
const writeTimeout = 5 * time.Second

// ClickWriter 访问记录的存储
type ClickWriter interface {
	CreateClick(ctx context.Context, click *model.Click) error
}

// Recorder 可关闭的访问记录器
type Recorder interface {
	Record(ctx context.Context, click *model.Click)
	Close(ctx context.Context) error
}

// New 按 workers 选择实现：0 为同步写入，否则为带队列的异步写入
func New(writer ClickWriter, queueSize, workers int, logger *zap.Logger) Recorder {
	if workers <= 0 {
		return NewSync(writer, logger)
	}
	return NewAsync(writer, queueSize, workers, logger)
}

// Sync 在调用方的 goroutine 里直接写库
type Sync struct {
	writer ClickWriter
	now    func() time.Time
	logger *zap.Logger
}

func NewSync(writer ClickWriter, logger *zap.Logger) *Sync {
	return &Sync{writer: writer, now: time.Now, logger: logger.Named("recorder")}
}

func (s *Sync) Record(ctx context.Context, click *model.Click) {
	c := *click
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	// 请求结束后连接可能已断开，写库不跟随请求取消
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := s.writer.CreateClick(ctx, &c); err != nil {
		s.logger.Error("写入访问记录失败", zap.String("slug", c.Slug), zap.Error(err))
	}
}

func (s *Sync) Close(context.Context) error {
	return nil
}

// Async 用有界队列和固定数量的 worker 写库。队列满时丢弃新记录
type Async struct {
	writer  ClickWriter
	queue   chan model.Click
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
	now     func() time.Time
	logger  *zap.Logger
}

func NewAsync(writer ClickWriter, queueSize, workers int, logger *zap.Logger) *Async {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if workers <= 0 {
		workers = 1
	}
	a := &Async{
		writer: writer,
		queue:  make(chan model.Click, queueSize),
		now:    time.Now,
		logger: logger.Named("recorder"),
	}
	for i := 0; i < workers; i++ {
		a.wg.Add(1)
		go a.work()
	}
	a.logger.Info("访问记录器已启动", zap.Int("queue_size", queueSize), zap.Int("workers", workers))
	return a
}

// Record 把记录放入队列，不会阻塞
func (a *Async) Record(_ context.Context, click *model.Click) {
	c := *click
	if c.CreatedAt.IsZero() {
		c.CreatedAt = a.now()
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.drop(c, "记录器已关闭")
		return
	}
	select {
	case a.queue <- c:
	default:
		a.drop(c, "队列已满")
	}
}

// Dropped 返回被丢弃的记录数
func (a *Async) Dropped() int64 {
	return a.dropped.Load()
}

// Close 停止接收新记录并等待队列写完，ctx 到期时返回 ctx.Err()
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("访问记录器已停止", zap.Int64("dropped", a.Dropped()))
		return nil
	case <-ctx.Done():
		a.logger.Warn("等待访问记录写入超时", zap.Int("pending", len(a.queue)))
		return ctx.Err()
	}
}

func (a *Async) work() {
	defer a.wg.Done()
	for c := range a.queue {
		a.write(c)
	}
}

func (a *Async) write(c model.Click) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := a.writer.CreateClick(ctx, &c); err != nil {
		a.logger.Error("写入访问记录失败", zap.String("slug", c.Slug), zap.Error(err))
	}
}

func (a *Async) drop(c model.Click, reason string) {
	a.dropped.Add(1)
	a.logger.Warn("丢弃访问记录", zap.String("reason", reason), zap.String("slug", c.Slug))
}
