package model

import (
	"encoding/json"
	"sort"
)

// StringSet 字符串集合
// JSON 中序列化为排序后的数组，反序列化时自动去重
type StringSet map[string]struct{}

// NewStringSet 由若干元素构造集合
func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Add 添加元素，返回是否为新元素
func (s StringSet) Add(item string) bool {
	if _, ok := s[item]; ok {
		return false
	}
	s[item] = struct{}{}
	return true
}

// Remove 删除元素，返回元素是否存在
func (s StringSet) Remove(item string) bool {
	if _, ok := s[item]; !ok {
		return false
	}
	delete(s, item)
	return true
}

// Has 判断元素是否存在
func (s StringSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Sorted 返回排序后的元素列表
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// Clone 复制集合
func (s StringSet) Clone() StringSet {
	out := make(StringSet, len(s))
	for item := range s {
		out[item] = struct{}{}
	}
	return out
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewStringSet(items...)
	return nil
}
