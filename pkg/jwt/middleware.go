package jwt

import (
	"strings"

	"study-assistant/pkg/logger"
	"study-assistant/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUsernameKey 用户名在gin.Context中的键名
	ContextUsernameKey = "username"
	// ContextClientIDKey 客户端会话ID在gin.Context中的键名
	ContextClientIDKey = "client_id"
)

// ClientChecker 判断客户端会话是否仍然有效（登出后令牌立即失效）
type ClientChecker func(clientID, username string) bool

// AuthMiddleware JWT认证中间件
// 从请求头中提取Authorization: Bearer <token>
// 验证token并将用户名和客户端ID存入gin.Context
func (s *JWTService) AuthMiddleware(check ClientChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "缺少Authorization请求头")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "Authorization格式错误，应为Bearer <token>")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			response.Unauthorized(c, "token不能为空")
			c.Abort()
			return
		}

		claims, err := s.ValidateToken(tokenString)
		if err != nil {
			logger.Warn("JWT验证失败", zap.Error(err), zap.String("path", c.Request.URL.Path))
			response.Unauthorized(c, "token无效或已过期")
			c.Abort()
			return
		}

		username := claims.Subject
		clientID := claims.ID
		if check != nil && !check(clientID, username) {
			response.Unauthorized(c, "会话已结束，请重新登录")
			c.Abort()
			return
		}

		c.Set(ContextUsernameKey, username)
		c.Set(ContextClientIDKey, clientID)

		c.Next()
	}
}

// GetUsername 从gin.Context中获取用户名
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextUsernameKey)
}

// GetClientID 从gin.Context中获取客户端会话ID
func GetClientID(c *gin.Context) string {
	return c.GetString(ContextClientIDKey)
}

