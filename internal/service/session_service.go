package service

import (
	"fmt"
	"time"

	"study-assistant/internal/model"
	"study-assistant/internal/repository"
)

// SessionService 会话
// session.json 记录最近一次登录的单例会话（进程重启后恢复）
// sessions.json 按客户端ID（JWT 的 jti）记录每个客户端各自的会话
type SessionService struct {
	repo *repository.SessionRepository
	now  func() time.Time
}

func NewSessionService(repo *repository.SessionRepository) *SessionService {
	return &SessionService{repo: repo, now: time.Now}
}

func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

// Save 整体覆盖单例会话，未登录时用户和房间都置空
func (s *SessionService) Save(loggedIn bool, user, room string) bool {
	return s.repo.Current().Set(s.snapshot(loggedIn, user, room))
}

// Load 读取单例会话，未保存过时为未登录
func (s *SessionService) Load() model.SessionSnapshot {
	return s.repo.Current().Get()
}

// Logout 单例会话回到未登录
func (s *SessionService) Logout() bool {
	return s.Save(false, "", "")
}

// Open 登录成功后为客户端建立会话
func (s *SessionService) Open(clientID, user string) error {
	if clientID == "" || user == "" {
		return fmt.Errorf("%w: client id and user are required", ErrInvalidInput)
	}
	snap := s.snapshot(true, user, "")
	return s.repo.Clients().Update(func(items map[string]*model.SessionSnapshot) error {
		items[clientID] = &snap
		return nil
	})
}

// Client 读取客户端会话
func (s *SessionService) Client(clientID string) (model.SessionSnapshot, bool) {
	snap, ok := s.repo.Clients().Get(clientID)
	if !ok {
		return model.SessionSnapshot{}, false
	}
	return *snap, true
}

// Valid 客户端会话存在且属于该用户
func (s *SessionService) Valid(clientID, user string) bool {
	snap, ok := s.Client(clientID)
	return ok && snap.LoggedIn && snap.User() == user
}

// SetRoom 记录客户端当前打开的房间，room 为空表示关闭
func (s *SessionService) SetRoom(clientID, room string) error {
	return s.repo.Clients().Update(func(items map[string]*model.SessionSnapshot) error {
		cur, ok := items[clientID]
		if !ok || !cur.LoggedIn {
			return fmt.Errorf("%w: session %q", ErrNotFound, clientID)
		}
		next := s.snapshot(true, cur.User(), room)
		items[clientID] = &next
		return nil
	})
}

// Close 登出：删除客户端会话，返回登出前的快照
func (s *SessionService) Close(clientID string) (model.SessionSnapshot, error) {
	var prev model.SessionSnapshot
	err := s.repo.Clients().Update(func(items map[string]*model.SessionSnapshot) error {
		cur, ok := items[clientID]
		if !ok {
			return fmt.Errorf("%w: session %q", ErrNotFound, clientID)
		}
		prev = *cur
		delete(items, clientID)
		return nil
	})
	return prev, err
}

func (s *SessionService) snapshot(loggedIn bool, user, room string) model.SessionSnapshot {
	now := s.now()
	snap := model.SessionSnapshot{LoggedIn: loggedIn, LastActivity: &now}
	if loggedIn && user != "" {
		snap.CurrentUser = &user
		if room != "" {
			snap.CurrentChat = &room
		}
	}
	return snap
}
