package shortcode

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeChecker 前 collisions 次查询都报告已存在
type fakeChecker struct {
	mu         sync.Mutex
	collisions int
	calls      int
	taken      map[string]bool
	err        error
}

func (f *fakeChecker) SlugExists(_ context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	if f.calls <= f.collisions {
		return true, nil
	}
	return f.taken[slug], nil
}

func TestNewRules(t *testing.T) {
	r := NewRules(8, 4, 12, []string{"admin"})
	assert.Equal(t, Rules{DefaultLength: 8, MinLength: 4, MaxLength: 12, Reserved: []string{"admin"}}, r)

	r = NewRules(0, 0, 0, nil)
	assert.Equal(t, DefaultRules(nil), r, "未配置时使用默认规则")
	assert.ErrorIs(t, NewRules(6, 3, 20, []string{"Admin"}).Validate("admin"), ErrReserved)
}

func TestRules_Validate(t *testing.T) {
	rules := DefaultRules([]string{"admin", "api", "robots.txt"})
	tests := []struct {
		slug string
		want error
	}{
		{"promo", nil},
		{"Spring_2026-a", nil},
		{"abc", nil},
		{"ab", ErrLength},
		{strings.Repeat("a", 21), ErrLength},
		{"has space", ErrCharset},
		{"中文短码", ErrCharset},
		{"a.b", ErrCharset},
		{"ADMIN", ErrReserved},
		{"api", ErrReserved},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := rules.Validate(tt.slug)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRandomString(t *testing.T) {
	s, err := RandomString(12)
	require.NoError(t, err)
	assert.Len(t, s, 12)
	for _, c := range s {
		assert.Contains(t, Alphabet, string(c))
	}
}

func TestGenerator_GrowsAfterCollisions(t *testing.T) {
	checker := &fakeChecker{collisions: maxAttempts}
	g := NewGenerator(checker, DefaultRules(nil), zap.NewNop().Sugar())

	code, err := g.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, 7, "连续 10 次冲突后长度加一")
}

func TestGenerator_NextWithoutStart(t *testing.T) {
	g := NewGenerator(&fakeChecker{}, DefaultRules(nil), zap.NewNop().Sugar())
	code, err := g.Next(context.Background())
	require.NoError(t, err)
	assert.NoError(t, DefaultRules(nil).Validate(code))
}

func TestGenerator_CheckerError(t *testing.T) {
	g := NewGenerator(&fakeChecker{err: errors.New("db down")}, DefaultRules(nil), zap.NewNop().Sugar())
	_, err := g.Next(context.Background())
	assert.Error(t, err)
}

func TestGenerator_StartFillsAndStop(t *testing.T) {
	g := NewGenerator(&fakeChecker{taken: map[string]bool{}}, DefaultRules(nil), zap.NewNop().Sugar())
	g.Start()
	defer g.Stop()

	assert.Eventually(t, func() bool {
		return len(g.codeChan) == ChannelBufferSize
	}, 2*time.Second, 10*time.Millisecond, "后台应填满通道")

	code, err := g.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, 6)

	g.Stop()
	g.Stop()
	for len(g.codeChan) > 0 {
		<-g.codeChan
	}
	_, err = g.Next(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}
