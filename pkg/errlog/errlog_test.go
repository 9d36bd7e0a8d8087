package errlog

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"study-assistant/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2024, 5, 1, 9, 30, 15, 0, time.UTC)

func TestFormat(t *testing.T) {
	assert.Equal(t,
		"[2024-05-01 09:30:15] StorageFailure: disk full - User: alice",
		Format(fixed, KindStorage, "disk full", "alice"))
	assert.Equal(t,
		"[2024-05-01 09:30:15] SystemError: boom - User: Not logged in",
		Format(fixed, KindSystem, "boom", ""))
	assert.Equal(t,
		"[2024-05-01 09:30:15] GenerationFailure: a b - User: bob",
		Format(fixed, KindGeneration, "a\nb", "bob"))
}

func TestLogger_AppendsLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)
	l.SetClock(func() time.Time { return fixed })

	assert.Equal(t, UserMessage(KindStorage), l.Log(KindStorage, "one", "alice"))
	msg := l.Log(KindGeneration, "two", "")
	assert.Equal(t, "内容生成失败，请稍后重试", msg)
	assert.NotContains(t, msg, "two")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "StorageFailure: one - User: alice")
	assert.Contains(t, lines[1], "GenerationFailure: two - User: Not logged in")
}

func TestLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "error_log.txt")
	l := New(config.ErrorLogConfig{Filename: path, MaxSize: 1, MaxBackups: 1})
	l.Log(KindSystem, "first", "")
	l.Log(KindSystem, "second", "")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestLogger_NilIsSafe(t *testing.T) {
	var l *Logger
	assert.Equal(t, "系统错误，请稍后重试", l.Log(KindSystem, "x", "u"))
	assert.Equal(t, UserMessage(KindSystem), UserMessage("Unknown"))
	assert.NoError(t, l.Close())
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(UserKey, "alice") }, Recovery(l))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "SystemError: kaboom - User: alice")
	assert.Contains(t, w.Body.String(), "系统错误，请稍后重试")
	assert.NotContains(t, w.Body.String(), "kaboom")
}
