package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-1.5-flash"

// GeminiGenerator 基于 Gemini 的文本生成
type GeminiGenerator struct {
	client    *genai.Client
	modelName string
}

// NewGeminiGenerator 创建 Gemini 客户端
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = defaultModel
	}
	return &GeminiGenerator{client: cl, modelName: modelName}, nil
}

// Close 关闭客户端
func (g *GeminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Generate 单轮生成
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m := g.client.GenerativeModel(g.modelName)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini generate: empty response")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

var _ Generator = (*GeminiGenerator)(nil)
