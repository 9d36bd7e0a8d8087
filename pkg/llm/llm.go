package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured 未配置 API Key
var ErrNotConfigured = errors.New("text generation is not configured")

// Generator 文本生成服务：输入提示词，返回生成内容
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc 函数适配器
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Unavailable 未配置时使用，所有调用都失败
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
