package repository

import (
	"study-assistant/internal/model"
	"study-assistant/pkg/store"
)

// 文档名
const (
	UsersDocument    = "users"
	GroupsDocument   = "groups"
	ChatsDocument    = "chats"
	StatsDocument    = "site_stats"
	SessionDocument  = "session"
	SessionsDocument = "sessions"
)

// UserRepository users.json
type UserRepository struct {
	col *store.Collection[model.User]
}

func NewUserRepository(s *store.Store) *UserRepository {
	return &UserRepository{col: store.NewCollection[model.User](s, UsersDocument)}
}

// Collection 底层集合，跨集合更新时使用
func (r *UserRepository) Collection() *store.Collection[model.User] {
	return r.col
}

// Get 按用户名获取（副本）
func (r *UserRepository) Get(username string) (*model.User, bool) {
	var u *model.User
	r.col.View(func(items map[string]*model.User) {
		if found, ok := items[username]; ok {
			u = found.Clone()
		}
	})
	return u, u != nil
}

func (r *UserRepository) Exists(username string) bool {
	return r.col.Exists(username)
}

func (r *UserRepository) Count() int {
	return r.col.Len()
}

// FindByEmail 按邮箱查找用户名，多个匹配时取字典序最小的
func (r *UserRepository) FindByEmail(email string) (string, bool) {
	found := ""
	r.col.View(func(items map[string]*model.User) {
		for name, u := range items {
			if u.Email == email && (found == "" || name < found) {
				found = name
			}
		}
	})
	return found, found != ""
}

// EverActive 曾经登录过（last_active 非空）的用户
func (r *UserRepository) EverActive() model.StringSet {
	out := model.NewStringSet()
	r.col.View(func(items map[string]*model.User) {
		for name, u := range items {
			if u.LastActive != nil {
				out.Add(name)
			}
		}
	})
	return out
}

// Update 修改单个用户，用户不存在时 fn 收到 nil
func (r *UserRepository) Update(username string, fn func(u *model.User) error) error {
	return r.col.Update(func(items map[string]*model.User) error {
		u := items[username]
		if u != nil {
			u.EnsureSets()
		}
		return fn(u)
	})
}
