package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger 请求日志记录器，按状态码选择日志级别
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		l := WithFields(map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"ip":       c.ClientIP(),
			"status":   status,
			"latency":  time.Since(start).String(),
			"username": c.GetString("username"),
		})

		switch {
		case status >= 500:
			l.Error("HTTP请求错误")
		case status >= 400:
			l.Warn("HTTP请求警告")
		default:
			l.Info("HTTP请求成功")
		}
	}
}
