package handler

import (
	"study-assistant/internal/service"
	"study-assistant/pkg/jwt"
	"study-assistant/pkg/response"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chats    *service.ChatService
	sessions *service.SessionService
}

func NewChatHandler(chats *service.ChatService, sessions *service.SessionService) *ChatHandler {
	return &ChatHandler{chats: chats, sessions: sessions}
}

// List 当前用户所在的聊天室
func (h *ChatHandler) List(c *gin.Context) {
	username := jwt.GetUsername(c)
	rooms := h.chats.ListForUser(username)
	if rooms == nil {
		rooms = []string{}
	}

	current := ""
	if snap, ok := h.sessions.Client(jwt.GetClientID(c)); ok {
		current = snap.Room()
	}
	response.Success(c, gin.H{"rooms": rooms, "current": current})
}

// Create 创建聊天室
func (h *ChatHandler) Create(c *gin.Context) {
	type req struct {
		Name    string   `json:"name" binding:"required"`
		Members []string `json:"members"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	room, err := h.chats.Create(r.Name, jwt.GetUsername(c), r.Members)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "聊天室已创建", room)
}

// Get 聊天室详情，仅成员可见
func (h *ChatHandler) Get(c *gin.Context) {
	room, err := h.chats.Get(c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	if !room.Members.Has(jwt.GetUsername(c)) {
		fail(c, service.ErrNotMember)
		return
	}
	response.Success(c, gin.H{
		"creator":      room.Creator,
		"members":      room.Members.Sorted(),
		"active_users": room.ActiveUsers.Sorted(),
		"created_at":   room.CreatedAt,
	})
}

// Open 打开聊天室：离开当前房间再进入新房间
func (h *ChatHandler) Open(c *gin.Context) {
	clientID := jwt.GetClientID(c)
	from := ""
	if snap, ok := h.sessions.Client(clientID); ok {
		from = snap.Room()
	}

	if err := h.chats.Switch(clientID, jwt.GetUsername(c), from, c.Param("name")); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已进入聊天室", nil)
}

// Enter 进入聊天室（不切换当前房间）
func (h *ChatHandler) Enter(c *gin.Context) {
	if err := h.chats.Enter(c.Param("name"), jwt.GetUsername(c)); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已进入聊天室", nil)
}

// Leave 离开聊天室，若为当前房间则一并清空
func (h *ChatHandler) Leave(c *gin.Context) {
	name := c.Param("name")
	username := jwt.GetUsername(c)
	clientID := jwt.GetClientID(c)

	var err error
	if snap, ok := h.sessions.Client(clientID); ok && snap.Room() == name {
		err = h.chats.Close(clientID, username, name)
	} else {
		err = h.chats.Leave(name, username)
	}
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已离开聊天室", nil)
}

// PostMessage 发送消息
func (h *ChatHandler) PostMessage(c *gin.Context) {
	type req struct {
		Text string `json:"text" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.chats.PostMessage(c.Param("name"), jwt.GetUsername(c), r.Text); err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "发送成功", nil)
}

// Timeline 消息与系统事件按时间合并
func (h *ChatHandler) Timeline(c *gin.Context) {
	entries, err := h.chats.Timeline(c.Param("name"), jwt.GetUsername(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, response.FilterTimeline(entries))
}
