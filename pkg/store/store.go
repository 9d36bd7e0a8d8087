package store

import (
	"encoding/json"
	"errors"
	"reflect"

	"study-assistant/pkg/logger"

	"go.uber.org/zap"
)

// Store 命名 JSON 文档的加载与保存
// 读写失败都在此处记录日志并吞掉，不向调用方抛出
type Store struct {
	backend   Backend
	onFailure func(document string, err error)
}

// New 基于指定后端创建 Store
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// OnFailure 注册读写失败回调（例如写入错误日志），文档不存在不算失败
func (s *Store) OnFailure(fn func(document string, err error)) {
	s.onFailure = fn
}

func (s *Store) fail(name string, err error) {
	if s.onFailure != nil {
		s.onFailure(name, err)
	}
}

// Load 将名为 name 的文档解码到 dst（必须为非空指针）
// 文档不存在或读取/解码失败时 dst 保持调用方给出的默认值，返回 false
func (s *Store) Load(name string, dst interface{}) bool {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		logger.Error("Load 需要非空指针", zap.String("document", name))
		return false
	}

	data, err := s.backend.Read(name)
	if err != nil {
		if !errors.Is(err, ErrNotExist) {
			logger.Warn("读取文档失败，使用默认值", zap.String("document", name), zap.Error(err))
			s.fail(name, err)
		}
		return false
	}

	// 先解码到新值，失败时不污染默认值
	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		logger.Warn("解析文档失败，使用默认值", zap.String("document", name), zap.Error(err))
		s.fail(name, err)
		return false
	}
	rv.Elem().Set(fresh.Elem())
	return true
}

// Save 整体覆盖保存文档，失败时返回 false
func (s *Store) Save(name string, doc interface{}) bool {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		logger.Error("序列化文档失败", zap.String("document", name), zap.Error(err))
		s.fail(name, err)
		return false
	}
	if err := s.backend.Write(name, data); err != nil {
		logger.Error("保存文档失败", zap.String("document", name), zap.Error(err))
		s.fail(name, err)
		return false
	}
	return true
}

// Delete 删除文档，失败时返回 false
func (s *Store) Delete(name string) bool {
	if err := s.backend.Delete(name); err != nil {
		logger.Error("删除文档失败", zap.String("document", name), zap.Error(err))
		s.fail(name, err)
		return false
	}
	return true
}
