package repository

import (
	"study-assistant/internal/model"
	"study-assistant/pkg/store"
)

// SessionRepository 会话：session.json 单例 + sessions.json 按客户端ID存放
type SessionRepository struct {
	current *store.Document[model.SessionSnapshot]
	clients *store.Collection[model.SessionSnapshot]
}

func NewSessionRepository(s *store.Store) *SessionRepository {
	return &SessionRepository{
		current: store.NewDocument(s, SessionDocument, func() model.SessionSnapshot { return model.SessionSnapshot{} }),
		clients: store.NewCollection[model.SessionSnapshot](s, SessionsDocument),
	}
}

// Current 单例会话
func (r *SessionRepository) Current() *store.Document[model.SessionSnapshot] {
	return r.current
}

// Clients 按客户端ID存放的会话
func (r *SessionRepository) Clients() *store.Collection[model.SessionSnapshot] {
	return r.clients
}
