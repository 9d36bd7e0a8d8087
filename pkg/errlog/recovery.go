package errlog

import (
	"fmt"
	"net/http"

	"study-assistant/pkg/logger"
	"study-assistant/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserKey gin.Context 中保存用户名的键，与 JWT 中间件一致
const UserKey = "username"

// Recovery 捕获处理过程中的 panic，记录 SystemError 后返回通用错误
// 进程不退出，客户端可直接重试
func Recovery(l *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				msg := l.Log(KindSystem, fmt.Sprint(r), c.GetString(UserKey))
				logger.Error("请求处理异常",
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				response.Error(c, http.StatusInternalServerError, msg)
				c.Abort()
			}
		}()
		c.Next()
	}
}
