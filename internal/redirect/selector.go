package redirect

import (
	"crypto/rand"
	"io"
	"math/big"
	mrand "math/rand"
	"sync"

	"go.uber.org/zap"

	"shortlink/internal/model"
)

// RandFunc 返回 [0, n) 内均匀分布的整数，必须可以并发调用
type RandFunc func(n int64) int64

var (
	randReader   io.Reader = rand.Reader
	fallbackOnce sync.Once
)

// CryptoRand 使用 crypto/rand 的随机源。读取失败时退回 math/rand，并记录一次警告
func CryptoRand(n int64) int64 {
	v, err := rand.Int(randReader, big.NewInt(n))
	if err != nil {
		fallbackOnce.Do(func() {
			zap.L().Warn("crypto/rand 不可用，目标选择退回 math/rand", zap.Error(err))
		})
		return mrand.Int63n(n)
	}
	return v.Int64()
}

// Selector 按权重随机选择跳转目标
type Selector struct {
	randn  RandFunc
	logger *zap.Logger
}

func NewSelector(randn RandFunc, logger *zap.Logger) *Selector {
	if randn == nil {
		randn = CryptoRand
	}
	return &Selector{randn: randn, logger: logger}
}

// Select 在启用且权重大于 0 的目标中按权重选择一个，保持传入顺序。
// 没有可选目标时返回 nil，调用方使用链接的默认地址。
func (s *Selector) Select(targets []model.Target) *model.Target {
	eligible := make([]int, 0, len(targets))
	var sum int64
	for i := range targets {
		if targets[i].Eligible() {
			eligible = append(eligible, i)
			sum += int64(targets[i].Weight)
		}
	}
	if len(eligible) == 0 || sum <= 0 {
		return nil
	}

	r := s.randn(sum) + 1 // [1, sum]
	for _, i := range eligible {
		r -= int64(targets[i].Weight)
		if r <= 0 {
			return &targets[i]
		}
	}

	// 随机源越界才会走到这里
	s.logger.DPanic("权重选择未命中任何目标", zap.Int64("sum", sum))
	return nil
}
