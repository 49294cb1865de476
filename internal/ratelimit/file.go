package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore 每个访客一个小 JSON 文件，多个进程共享同一目录时也能生效
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o775); err != nil {
		return nil, fmt.Errorf("创建限流目录失败: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, "ratelimit_"+key+".json")
}

func (s *FileStore) Get(_ context.Context, key string) (int64, int, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	var c counter
	if json.Unmarshal(data, &c) != nil {
		// 文件损坏按新窗口处理
		return 0, 0, nil
	}
	return c.Bucket, c.Count, nil
}

func (s *FileStore) Set(_ context.Context, key string, bucket int64, count int) error {
	data, err := json.Marshal(counter{Bucket: bucket, Count: count})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(key), data, 0o664)
}

var _ CounterStore = (*FileStore)(nil)
