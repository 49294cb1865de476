package shortcode

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// Alphabet 生成短码使用的字符，和校验规则允许的字符一致
	Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"
	// ChannelBufferSize 预生成短码通道的容量
	ChannelBufferSize = 256
	// MinFillThreshold 低于该数量时触发补充
	MinFillThreshold = 32
	// maxAttempts 同一长度下连续冲突的次数，超过后长度加一
	maxAttempts = 10
)

// ErrStopped 生成器已停止
var ErrStopped = errors.New("shortcode generator stopped")

// SlugChecker 查询短码是否已被占用
type SlugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Generator 在后台预生成未被占用的短码
type Generator struct {
	checker   SlugChecker
	rules     Rules
	codeChan  chan string
	mu        sync.Mutex
	isFilling bool
	stopOnce  sync.Once
	stopChan  chan struct{}
	logger    *zap.SugaredLogger
}

// NewGenerator 创建短码生成器，需要调用 Start 才会开始预生成
func NewGenerator(checker SlugChecker, rules Rules, logger *zap.SugaredLogger) *Generator {
	return &Generator{
		checker:  checker,
		rules:    rules,
		codeChan: make(chan string, ChannelBufferSize),
		stopChan: make(chan struct{}),
		logger:   logger.Named("shortcode_generator"),
	}
}

// Start 启动后台生成和补充任务
func (g *Generator) Start() {
	g.logger.Info("启动短码生成器...")
	go g.fillChannel()
	go g.monitorAndRefill()
}

// Stop 停止后台任务，可以重复调用
func (g *Generator) Stop() {
	g.stopOnce.Do(func() {
		g.logger.Info("正在停止短码生成器...")
		close(g.stopChan)
	})
}

// Next 取一个短码。通道为空时直接生成，不等待后台补充
func (g *Generator) Next(ctx context.Context) (string, error) {
	select {
	case code := <-g.codeChan:
		// 预生成之后可能已被自定义短码占用
		if exists, err := g.checker.SlugExists(ctx, code); err == nil && !exists {
			return code, nil
		}
	default:
	}

	select {
	case <-g.stopChan:
		return "", ErrStopped
	default:
	}
	return g.generateUniqueCode(ctx)
}

func (g *Generator) monitorAndRefill() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if len(g.codeChan) < MinFillThreshold {
				g.fillChannel()
			}
		case <-g.stopChan:
			g.logger.Info("已停止监控和补充任务。")
			return
		}
	}
}

func (g *Generator) fillChannel() {
	g.mu.Lock()
	if g.isFilling {
		g.mu.Unlock()
		return
	}
	g.isFilling = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.isFilling = false
		g.mu.Unlock()
	}()

	g.logger.Debugf("通道中剩余 %d 个短码，开始补充...", len(g.codeChan))
	for len(g.codeChan) < ChannelBufferSize {
		select {
		case <-g.stopChan:
			g.logger.Info("填充任务已中断。")
			return
		default:
		}

		code, err := g.generateUniqueCode(context.Background())
		if err != nil {
			g.logger.Errorf("生成唯一短码时出错: %v", err)
			time.Sleep(time.Second) // 数据库不可用时避免空转
			continue
		}
		select {
		case g.codeChan <- code:
		default:
			return
		}
	}
	g.logger.Debugf("短码通道已填满，现有 %d 个。", len(g.codeChan))
}

// generateUniqueCode 生成一个未被占用的短码，连续冲突 10 次后长度加一
func (g *Generator) generateUniqueCode(ctx context.Context) (string, error) {
	length := g.rules.DefaultLength
	if length < g.rules.MinLength {
		length = g.rules.MinLength
	}
	for {
		for i := 0; i < maxAttempts; i++ {
			code, err := RandomString(length)
			if err != nil {
				return "", err
			}
			if g.rules.IsReserved(code) {
				continue
			}
			exists, err := g.checker.SlugExists(ctx, code)
			if err != nil {
				return "", err
			}
			if !exists {
				return code, nil
			}
		}
		if length >= g.rules.MaxLength {
			return "", errors.New("短码空间已耗尽")
		}
		g.logger.Warnf("长度 %d 的短码连续 %d 次冲突，增加长度", length, maxAttempts)
		length++
	}
}

// RandomString 用加密安全的随机数生成指定长度的短码
func RandomString(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(Alphabet)))
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = Alphabet[num.Int64()]
	}
	return string(b), nil
}
