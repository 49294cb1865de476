package ratelimit

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type counter struct {
	Bucket int64 `json:"bucket"`
	Count  int   `json:"count"`
}

// MemoryStore 进程内计数，过期的窗口由 go-cache 自动清理
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(2*Window, 5*time.Minute)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (int64, int, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return 0, 0, nil
	}
	c := v.(counter)
	return c.Bucket, c.Count, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, bucket int64, count int) error {
	s.cache.SetDefault(key, counter{Bucket: bucket, Count: count})
	return nil
}

var _ CounterStore = (*MemoryStore)(nil)
