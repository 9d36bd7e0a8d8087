package model

import (
	"sort"
	"time"
)

// 系统事件类型
const (
	EventCreate = "create"
	EventEnter  = "enter"
	EventLeave  = "leave"

	// KindMessage 时间线中的普通用户消息
	KindMessage = "message"
)

// ChatRoom 聊天室（chats.json 中以房间名为键）
// ActiveUsers 为建议性的在线标记，仅在进入/离开时更新
type ChatRoom struct {
	Creator        string        `json:"creator"`
	Members        StringSet     `json:"members"`
	Messages       []Message     `json:"messages"`
	SystemMessages []SystemEvent `json:"system_messages"`
	ActiveUsers    StringSet     `json:"active_users"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Message 用户消息
type Message struct {
	User    string    `json:"user"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// SystemEvent 房间自身产生的事件
type SystemEvent struct {
	Type    string    `json:"type"`
	User    string    `json:"user"`
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// TimelineEntry 合并后的展示条目
type TimelineEntry struct {
	Kind string
	User string
	Text string
	Time time.Time
}

// Timeline 将系统事件与用户消息按时间合并
// 两个日志各自按插入顺序单调不减，时间相同时系统事件在前，同一日志内保持原顺序
func (r *ChatRoom) Timeline() []TimelineEntry {
	out := make([]TimelineEntry, 0, len(r.SystemMessages)+len(r.Messages))
	for _, e := range r.SystemMessages {
		out = append(out, TimelineEntry{Kind: e.Type, User: e.User, Text: e.Message, Time: e.Time})
	}
	for _, m := range r.Messages {
		out = append(out, TimelineEntry{Kind: KindMessage, User: m.User, Text: m.Message, Time: m.Time})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// Clone 深拷贝
func (r *ChatRoom) Clone() *ChatRoom {
	c := *r
	c.Members = r.Members.Clone()
	c.ActiveUsers = r.ActiveUsers.Clone()
	c.Messages = append([]Message(nil), r.Messages...)
	c.SystemMessages = append([]SystemEvent(nil), r.SystemMessages...)
	return &c
}

// EnsureSets 补齐旧文档中缺失的集合字段
func (r *ChatRoom) EnsureSets() {
	if r.Members == nil {
		r.Members = NewStringSet()
	}
	if r.ActiveUsers == nil {
		r.ActiveUsers = NewStringSet()
	}
}
