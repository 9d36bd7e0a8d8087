package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore 本地目录存储，每个键一个文件
type FileStore struct {
	dir string
}

// NewFileStore 创建本地存储，目录不存在时自动创建
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建头像目录失败: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("非法的对象键: %q", key)
	}
	return filepath.Join(s.dir, key), nil
}

// Put 写入对象，返回文件路径作为引用
func (s *FileStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return "", fmt.Errorf("写入头像失败: %w", err)
	}
	return p, nil
}

// Get 读取对象
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Delete 删除对象，不存在时不报错
func (s *FileStore) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

var _ Store = (*FileStore)(nil)
