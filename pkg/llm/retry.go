package llm

import (
	"context"
	"errors"
	"time"

	"study-assistant/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Retrying 为每次调用加超时，失败后按指数退避重试
type Retrying struct {
	inner      Generator
	timeout    time.Duration
	maxRetries uint64

	// InitialInterval 首次重试前的等待时间
	InitialInterval time.Duration
}

// NewRetrying 包装生成器，timeout<=0 时不限时
func NewRetrying(inner Generator, timeout time.Duration, maxRetries int) *Retrying {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Retrying{
		inner:           inner,
		timeout:         timeout,
		maxRetries:      uint64(maxRetries),
		InitialInterval: 500 * time.Millisecond,
	}
}

// Generate 调用内部生成器，调用方取消或未配置时不再重试
func (r *Retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var out string
	attempt := 0

	op := func() error {
		attempt++
		callCtx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		text, err := r.inner.Generate(callCtx, prompt)
		if err == nil {
			out = text
			return nil
		}
		if errors.Is(err, ErrNotConfigured) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.InitialInterval
	b.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		logger.Warn("文本生成失败，准备重试",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, r.maxRetries), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", err
	}
	return out, nil
}

var _ Generator = (*Retrying)(nil)
