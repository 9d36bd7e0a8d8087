package blob

import (
	"context"
	"errors"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("blob not found")

// Store 头像等二进制对象存储，以键（用户名）寻址
// Put 返回可保存在用户文档中的引用
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
