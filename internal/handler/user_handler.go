package handler

import (
	"errors"
	"io"
	"net/http"

	"study-assistant/internal/service"
	"study-assistant/pkg/jwt"
	"study-assistant/pkg/logger"
	"study-assistant/pkg/redis"
	"study-assistant/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxImageSize 头像大小上限
const maxImageSize = 5 << 20

type UserHandler struct {
	users    *service.UserService
	sessions *service.SessionService
	chats    *service.ChatService
	stats    *service.StatsService
	tokens   *jwt.JWTService
}

func NewUserHandler(users *service.UserService, sessions *service.SessionService, chats *service.ChatService, stats *service.StatsService, tokens *jwt.JWTService) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, chats: chats, stats: stats, tokens: tokens}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Email    string `json:"email"`
		Nickname string `json:"nickname"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.users.Register(r.Username, r.Password, r.Email, r.Nickname, nil); err != nil {
		fail(c, err)
		return
	}

	user, err := h.users.Get(r.Username)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "注册成功", response.FilterUserInfo(r.Username, user))
}

// Login 用户登录：校验密码，签发令牌并建立客户端会话
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), r.Username, r.Password)
	if err != nil {
		fail(c, err)
		return
	}

	token, err := h.tokens.GenerateToken(r.Username)
	if err != nil {
		response.ErrorWithDetails(c, http.StatusInternalServerError, "签发令牌失败", err)
		return
	}
	if err := h.sessions.Open(token.ClientID, r.Username); err != nil {
		fail(c, err)
		return
	}
	h.sessions.Save(true, r.Username, "")

	response.SuccessWithMessage(c, "登录成功", &response.LoginResponse{
		User:        response.FilterUserInfo(r.Username, user),
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
	})
}

// RecoverUsername 按邮箱找回用户名
func (h *UserHandler) RecoverUsername(c *gin.Context) {
	type req struct {
		Email string `json:"email" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	username, ok := h.users.RecoverUsername(r.Email)
	if !ok {
		response.NotFound(c, "没有使用该邮箱的账号")
		return
	}
	response.Success(c, gin.H{"username": username})
}

// ResetPassword 重置密码，临时密码只在本次响应中返回
func (h *UserHandler) ResetPassword(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	temp, err := h.users.ResetPassword(r.Username, r.Email)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "密码已重置", gin.H{"temporary_password": temp})
}

// GetProfile 当前用户资料
func (h *UserHandler) GetProfile(c *gin.Context) {
	username := jwt.GetUsername(c)
	user, err := h.users.Get(username)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterUserInfo(username, user))
}

// UpdateProfile 修改资料，只修改请求中出现的字段
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	type req struct {
		Nickname    *string `json:"nickname"`
		Email       *string `json:"email"`
		NewPassword *string `json:"new_password"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	username := jwt.GetUsername(c)
	err := h.users.UpdateProfile(username, service.ProfileUpdate{
		Nickname:    r.Nickname,
		Email:       r.Email,
		NewPassword: r.NewPassword,
	})
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.users.Get(username)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "资料已更新", response.FilterUserInfo(username, user))
}

// UploadImage 上传头像，请求体为图片内容
func (h *UserHandler) UploadImage(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImageSize+1))
	if err != nil {
		response.BadRequest(c, "读取图片失败")
		return
	}
	if len(data) > maxImageSize {
		response.BadRequest(c, "图片过大")
		return
	}

	ref, err := h.users.SetProfileImage(c.Request.Context(), jwt.GetUsername(c), data, c.ContentType())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "头像已更新", gin.H{"profile_image": ref})
}

// GetImage 读取指定用户的头像
func (h *UserHandler) GetImage(c *gin.Context) {
	data, err := h.users.ProfileImage(c.Request.Context(), c.Param("username"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

// Logout 登出：离开当前房间，结束客户端会话
func (h *UserHandler) Logout(c *gin.Context) {
	username := jwt.GetUsername(c)
	clientID := jwt.GetClientID(c)

	if snap, ok := h.sessions.Client(clientID); ok && snap.Room() != "" {
		if err := h.chats.Close(clientID, username, snap.Room()); err != nil {
			logger.Warn("登出时离开聊天室失败", zap.String("username", username), zap.Error(err))
		}
	}
	if _, err := h.sessions.Close(clientID); err != nil {
		fail(c, err)
		return
	}
	if h.sessions.Load().User() == username {
		h.sessions.Logout()
	}
	h.users.Logout(c.Request.Context(), username)

	response.SuccessWithMessage(c, "已登出", nil)
}

// GetOnlineUsers 在线用户：启用 Redis 时为近期活跃用户，否则为累计活跃快照
func (h *UserHandler) GetOnlineUsers(c *gin.Context) {
	users, err := h.users.OnlineUsers(c.Request.Context())
	source := "presence"
	if errors.Is(err, redis.ErrDisabled) {
		users = h.stats.RecomputeUserStats().ActiveUsers.Sorted()
		source = "snapshot"
	} else if err != nil {
		response.ErrorWithDetails(c, http.StatusInternalServerError, "获取在线用户失败", err)
		return
	}

	response.Success(c, gin.H{
		"source":       source,
		"online_count": len(users),
		"users":        users,
	})
}

// Activity 认证后的请求都记录一次活动
func (h *UserHandler) Activity() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := jwt.GetUsername(c)
		if username != "" {
			if err := h.users.Touch(c.Request.Context(), username); err != nil {
				logger.Warn("记录活动失败", zap.String("username", username), zap.Error(err))
			}
		}
		c.Next()
	}
}

// CheckClient 令牌对应的客户端会话必须仍然存在
func (h *UserHandler) CheckClient(clientID, username string) bool {
	return h.sessions.Valid(clientID, username)
}
