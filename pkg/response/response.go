package response

import (
	"net/http"
	"time"

	"study-assistant/internal/model"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 状态码：0表示成功，其他表示错误
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 错误详情（仅在开发环境显示）
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应，HTTP状态码与业务码一致
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带错误详情的错误响应
func ErrorWithDetails(c *gin.Context, code int, message string, err error) {
	response := Response{
		Code:    code,
		Message: message,
	}

	// 在开发环境下显示错误详情
	if gin.Mode() == gin.DebugMode && err != nil {
		response.Error = err.Error()
	}

	c.JSON(code, response)
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict 409错误
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

const timeLayout = "2006-01-02 15:04"

// UserInfo 用户信息（隐藏密码摘要）
type UserInfo struct {
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Nickname     string   `json:"nickname"`
	ProfileImage string   `json:"profile_image,omitempty"`
	CreatedAt    string   `json:"created_at"`
	LastActive   string   `json:"last_active,omitempty"`
	MyGroups     []string `json:"my_groups"`
	MyChats      []string `json:"my_chats"`
	StudyRecords int      `json:"study_records"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(username string, user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	info := &UserInfo{
		Username:     username,
		Email:        user.Email,
		Nickname:     user.Nickname,
		CreatedAt:    user.CreatedAt.Format(timeLayout),
		MyGroups:     user.MyGroups.Sorted(),
		MyChats:      user.MyChats.Sorted(),
		StudyRecords: len(user.StudyRecords),
	}
	if user.ProfileImage != nil {
		info.ProfileImage = *user.ProfileImage
	}
	if user.LastActive != nil {
		info.LastActive = user.LastActive.Format(timeLayout)
	}
	return info
}

// LoginResponse 登录响应
type LoginResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TimelineEntry 聊天室时间线条目（用户消息与系统事件合并后）
type TimelineEntry struct {
	Kind string `json:"kind"` // message / create / enter / leave
	User string `json:"user"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// FilterTimeline 转换聊天室时间线
func FilterTimeline(entries []model.TimelineEntry) []TimelineEntry {
	out := make([]TimelineEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, TimelineEntry{
			Kind: e.Kind,
			User: e.User,
			Text: e.Text,
			Time: e.Time.Format(time.RFC3339),
		})
	}
	return out
}
