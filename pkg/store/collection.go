package store

import (
	"sync"

	"study-assistant/pkg/logger"

	"go.uber.org/zap"
)

// Collection 以键索引的文档集合（users / groups / chats 等）
// 启动时加载到内存，之后所有读写都经过同一把锁：
// 同一集合的读-改-写串行执行，不会出现后写覆盖先写的丢失更新
type Collection[T any] struct {
	mu    sync.RWMutex
	name  string
	store *Store
	items map[string]*T
}

// NewCollection 创建集合并从存储中加载，文档不存在时为空集合
func NewCollection[T any](s *Store, name string) *Collection[T] {
	c := &Collection[T]{name: name, store: s}
	c.Reload()
	return c
}

// Name 集合对应的文档名
func (c *Collection[T]) Name() string {
	return c.name
}

// Reload 丢弃内存中的内容，重新从存储读取
func (c *Collection[T]) Reload() {
	items := map[string]*T{}
	c.store.Load(c.name, &items)
	if items == nil {
		items = map[string]*T{}
	}
	for k, v := range items {
		if v == nil {
			delete(items, k)
		}
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

// View 在读锁下访问全部条目，fn 不得修改或保留 items
func (c *Collection[T]) View(fn func(items map[string]*T)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.items)
}

// Update 在写锁下修改条目，fn 返回 nil 时整体保存文档
// fn 必须先完成全部校验再修改，返回错误时不会持久化
func (c *Collection[T]) Update(fn func(items map[string]*T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := fn(c.items); err != nil {
		return err
	}
	c.persistLocked()
	return nil
}

// Get 返回条目的深拷贝
func (c *Collection[T]) Get(key string) (*T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[key]
	if !ok {
		return nil, false
	}
	cp := deepCopy(*item)
	return &cp, true
}

// Exists 判断键是否存在
func (c *Collection[T]) Exists(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.items[key]
	return ok
}

// Len 条目数量
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) persistLocked() {
	if !c.store.Save(c.name, c.items) {
		// 内存状态已更新，下一次成功的保存会补齐
		logger.Warn("集合保存失败", zap.String("collection", c.name))
	}
}

// Update2 同时修改两个集合，按参数顺序加锁
// 所有跨集合操作都必须使用相同的顺序（users 总是最后加锁），避免死锁
// 两个文档依次保存，中途崩溃仍可能不一致
func Update2[A, B any](a *Collection[A], b *Collection[B], fn func(ai map[string]*A, bi map[string]*B) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := fn(a.items, b.items); err != nil {
		return err
	}
	a.persistLocked()
	b.persistLocked()
	return nil
}
