package service

import (
	"fmt"
	"strings"
	"time"

	"study-assistant/internal/model"
	"study-assistant/internal/repository"
	"study-assistant/pkg/store"
)

// ChatService 聊天室
// 创建时先锁 chats 再锁 users
type ChatService struct {
	chats    *repository.ChatRepository
	users    *repository.UserRepository
	sessions *SessionService
	strict   bool
	now      func() time.Time
}

func NewChatService(chats *repository.ChatRepository, users *repository.UserRepository, sessions *SessionService, strict bool) *ChatService {
	return &ChatService{chats: chats, users: users, sessions: sessions, strict: strict, now: time.Now}
}

func (s *ChatService) SetClock(now func() time.Time) {
	s.now = now
}

// Create 创建聊天室，成员为 members ∪ {creator}，记录一条 create 事件
func (s *ChatService) Create(name, creator string, members []string) (*model.ChatRoom, error) {
	name = strings.TrimSpace(name)
	if name == "" || creator == "" {
		return nil, fmt.Errorf("%w: room name and creator are required", ErrInvalidInput)
	}

	set := model.NewStringSet(creator)
	for _, m := range members {
		if m = strings.TrimSpace(m); m != "" {
			set.Add(m)
		}
	}

	var out *model.ChatRoom
	err := store.Update2(s.chats.Collection(), s.users.Collection(), func(chats map[string]*model.ChatRoom, users map[string]*model.User) error {
		if _, ok := chats[name]; ok {
			return fmt.Errorf("%w: room %q", ErrAlreadyExists, name)
		}
		if err := checkMembers(users, set, s.strict); err != nil {
			return err
		}

		now := s.now()
		room := &model.ChatRoom{
			Creator:  creator,
			Members:  set,
			Messages: []model.Message{},
			SystemMessages: []model.SystemEvent{{
				Type:    model.EventCreate,
				User:    creator,
				Time:    now,
				Message: "聊天室已创建",
			}},
			ActiveUsers: model.NewStringSet(),
			CreatedAt:   now,
		}
		chats[name] = room

		for m := range set {
			if u, ok := users[m]; ok {
				u.EnsureSets()
				u.MyChats.Add(name)
			}
		}
		out = room.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Enter 进入聊天室：加入在线集合并记录 enter 事件
func (s *ChatService) Enter(name, user string) error {
	return s.chats.Update(name, func(room *model.ChatRoom) error {
		if err := requireMember(room, name, user); err != nil {
			return err
		}
		room.ActiveUsers.Add(user)
		room.SystemMessages = append(room.SystemMessages, model.SystemEvent{
			Type:    model.EventEnter,
			User:    user,
			Time:    s.now(),
			Message: fmt.Sprintf("%s 进入了聊天室", user),
		})
		return nil
	})
}

// Leave 离开聊天室：移出在线集合并记录 leave 事件
func (s *ChatService) Leave(name, user string) error {
	return s.chats.Update(name, func(room *model.ChatRoom) error {
		if err := requireMember(room, name, user); err != nil {
			return err
		}
		room.ActiveUsers.Remove(user)
		room.SystemMessages = append(room.SystemMessages, model.SystemEvent{
			Type:    model.EventLeave,
			User:    user,
			Time:    s.now(),
			Message: fmt.Sprintf("%s 离开了聊天室", user),
		})
		return nil
	})
}

// PostMessage 发送消息
func (s *ChatService) PostMessage(name, user, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message must not be empty", ErrInvalidInput)
	}
	return s.chats.Update(name, func(room *model.ChatRoom) error {
		if err := requireMember(room, name, user); err != nil {
			return err
		}
		room.Messages = append(room.Messages, model.Message{User: user, Message: text, Time: s.now()})
		return nil
	})
}

// Timeline 消息与系统事件合并后的展示序列，仅成员可读
func (s *ChatService) Timeline(name, user string) ([]model.TimelineEntry, error) {
	room, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if !room.Members.Has(user) {
		return nil, ErrNotMember
	}
	return room.Timeline(), nil
}

// Switch 切换房间：确认可以进入 to 后，先离开 from 再进入 to，并记录到客户端会话
// from 为空表示当前没有打开的房间，from 与 to 相同时不做任何事；
// 离开失败（例如房间被移除）不阻止进入新房间
func (s *ChatService) Switch(clientID, user, from, to string) error {
	target, _ := s.chats.Get(to)
	if err := requireMember(target, to, user); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	if from != "" {
		if err := s.Leave(from, user); err != nil && !isNotFound(err) {
			return err
		}
	}
	if err := s.Enter(to, user); err != nil {
		// 已离开 from，会话中不再保留旧房间
		if s.sessions != nil && clientID != "" {
			_ = s.sessions.SetRoom(clientID, "")
		}
		return err
	}
	if s.sessions != nil && clientID != "" {
		return s.sessions.SetRoom(clientID, to)
	}
	return nil
}

// Close 关闭当前房间（离开并清空客户端会话中的房间）
func (s *ChatService) Close(clientID, user, room string) error {
	if room != "" {
		if err := s.Leave(room, user); err != nil && !isNotFound(err) {
			return err
		}
	}
	if s.sessions != nil && clientID != "" {
		return s.sessions.SetRoom(clientID, "")
	}
	return nil
}

// Get 获取聊天室副本
func (s *ChatService) Get(name string) (*model.ChatRoom, error) {
	room, ok := s.chats.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: room %q", ErrNotFound, name)
	}
	return room, nil
}

// ListForUser 用户所在的聊天室
func (s *ChatService) ListForUser(username string) []string {
	return s.chats.NamesByMember(username)
}

func requireMember(room *model.ChatRoom, name, user string) error {
	if room == nil {
		return fmt.Errorf("%w: room %q", ErrNotFound, name)
	}
	if !room.Members.Has(user) {
		return ErrNotMember
	}
	return nil
}
