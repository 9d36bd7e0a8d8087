package store

import (
	"encoding/json"
	"sync"
)

// Document 单例文档（site_stats / session）
type Document[T any] struct {
	mu    sync.Mutex
	name  string
	store *Store
	value T
}

// NewDocument 创建单例文档，不存在时使用 def 给出的默认值
func NewDocument[T any](s *Store, name string, def func() T) *Document[T] {
	d := &Document[T]{name: name, store: s, value: def()}
	s.Load(name, &d.value)
	return d
}

// Get 返回当前值的深拷贝
func (d *Document[T]) Get() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return deepCopy(d.value)
}

// Update 在锁内修改并保存，返回修改后的深拷贝
func (d *Document[T]) Update(fn func(v *T) error) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := deepCopy(d.value)
	if err := fn(&next); err != nil {
		var zero T
		return zero, err
	}
	d.value = next
	d.store.Save(d.name, d.value)
	return deepCopy(d.value), nil
}

// Set 整体覆盖并保存，返回保存是否成功
func (d *Document[T]) Set(v T) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value = deepCopy(v)
	return d.store.Save(d.name, d.value)
}

// deepCopy 通过 JSON 往返复制，文档体量小
func deepCopy[T any](v T) T {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
