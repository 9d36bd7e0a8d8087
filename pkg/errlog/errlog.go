package errlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"study-assistant/config"
	"study-assistant/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 错误类别
const (
	KindStorage    = "StorageFailure"
	KindGeneration = "GenerationFailure"
	KindSystem     = "SystemError"
)

const (
	timeLayout = "2006-01-02 15:04:05"
	anonymous  = "Not logged in"
)

// 展示给用户的通用提示，不包含内部错误细节
var userMessages = map[string]string{
	KindStorage:    "数据保存失败，请稍后重试",
	KindGeneration: "内容生成失败，请稍后重试",
	KindSystem:     "系统错误，请稍后重试",
}

// UserMessage 返回类别对应的通用提示
func UserMessage(kind string) string {
	if msg, ok := userMessages[kind]; ok {
		return msg
	}
	return userMessages[KindSystem]
}

// Logger 追加写入的错误日志，一行一条：
// [时间] 类别: 消息 - User: 用户名
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// New 按配置创建错误日志，文件由 lumberjack 负责轮转
func New(cfg config.ErrorLogConfig) *Logger {
	if dir := filepath.Dir(cfg.Filename); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}
	return NewWithWriter(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
	})
}

// NewWithWriter 写入任意 io.Writer
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{w: w, now: time.Now}
}

// SetClock 替换时钟
func (l *Logger) SetClock(now func() time.Time) {
	l.now = now
}

// Format 格式化一行错误日志（不含换行）
func Format(t time.Time, kind, message, user string) string {
	if user == "" {
		user = anonymous
	}
	// 消息中的换行会破坏一行一条的格式
	message = strings.ReplaceAll(message, "\n", " ")
	return fmt.Sprintf("[%s] %s: %s - User: %s", t.Format(timeLayout), kind, message, user)
}

// Log 写入一条错误，返回展示给用户的通用提示
// nil Logger 只写结构化日志
func (l *Logger) Log(kind, message, user string) string {
	if l == nil {
		logger.Warn("错误日志未初始化", zap.String("line", Format(time.Now(), kind, message, user)))
		return UserMessage(kind)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := Format(l.now(), kind, message, user)
	if _, err := io.WriteString(l.w, line+"\n"); err != nil {
		logger.Error("写入错误日志失败", zap.Error(err), zap.String("line", line))
	}
	return UserMessage(kind)
}

// Close 关闭底层文件
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	if c, ok := l.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
