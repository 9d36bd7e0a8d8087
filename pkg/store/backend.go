package store

import "errors"

// ErrNotExist 文档不存在
var ErrNotExist = errors.New("document does not exist")

// Backend 文档的原始读写
// 每次 Write 整体覆盖同名文档，不做局部合并
type Backend interface {
	Read(name string) ([]byte, error)
	Write(name string, data []byte) error
	Delete(name string) error
	Names() ([]string, error)
}
