package repository

import (
	"sort"

	"study-assistant/internal/model"
	"study-assistant/pkg/store"
)

// ChatRepository chats.json
type ChatRepository struct {
	col *store.Collection[model.ChatRoom]
}

func NewChatRepository(s *store.Store) *ChatRepository {
	return &ChatRepository{col: store.NewCollection[model.ChatRoom](s, ChatsDocument)}
}

func (r *ChatRepository) Collection() *store.Collection[model.ChatRoom] {
	return r.col
}

// Get 按房间名获取（副本）
func (r *ChatRepository) Get(name string) (*model.ChatRoom, bool) {
	var room *model.ChatRoom
	r.col.View(func(items map[string]*model.ChatRoom) {
		if found, ok := items[name]; ok {
			room = found.Clone()
		}
	})
	return room, room != nil
}

// NamesByMember 用户所在的房间名，排序
func (r *ChatRepository) NamesByMember(username string) []string {
	var out []string
	r.col.View(func(items map[string]*model.ChatRoom) {
		for name, room := range items {
			if room.Members.Has(username) {
				out = append(out, name)
			}
		}
	})
	sort.Strings(out)
	return out
}

// Update 修改单个房间，不存在时 fn 收到 nil
func (r *ChatRepository) Update(name string, fn func(room *model.ChatRoom) error) error {
	return r.col.Update(func(items map[string]*model.ChatRoom) error {
		room := items[name]
		if room != nil {
			room.EnsureSets()
		}
		return fn(room)
	})
}
