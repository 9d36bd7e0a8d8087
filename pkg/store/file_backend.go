package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const fileExt = ".json"

// FileBackend 将每个文档保存为 <dir>/<name>.json
type FileBackend struct {
	dir string
}

// NewFileBackend 创建文件后端，目录不存在时自动创建
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+fileExt)
}

// Read 读取文档
func (b *FileBackend) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(b.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotExist
	}
	return data, err
}

// Write 先写临时文件再重命名，崩溃时不会留下写了一半的文档
func (b *FileBackend) Write(name string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("同步临时文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Rename(tmpName, b.path(name)); err != nil {
		return fmt.Errorf("替换文档失败: %w", err)
	}
	return nil
}

// Delete 删除文档，不存在时不报错
func (b *FileBackend) Delete(name string) error {
	err := os.Remove(b.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Names 列出目录中的全部文档名
func (b *FileBackend) Names() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

var _ Backend = (*FileBackend)(nil)
