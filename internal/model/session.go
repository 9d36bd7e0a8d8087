package model

import "time"

// SessionSnapshot 会话快照（session.json 单例，sessions.json 中按客户端ID存放）
// CurrentChat 仅在 LoggedIn 时有意义，登出时清空
type SessionSnapshot struct {
	LoggedIn     bool       `json:"logged_in"`
	CurrentUser  *string    `json:"current_user"`
	CurrentChat  *string    `json:"current_chat"`
	LastActivity *time.Time `json:"last_activity"`
}

// User 返回当前用户名，未登录时为空
func (s SessionSnapshot) User() string {
	if s.CurrentUser == nil {
		return ""
	}
	return *s.CurrentUser
}

// Room 返回当前聊天室，未打开时为空
func (s SessionSnapshot) Room() string {
	if s.CurrentChat == nil {
		return ""
	}
	return *s.CurrentChat
}
