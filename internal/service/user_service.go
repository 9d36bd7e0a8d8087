package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"study-assistant/internal/model"
	"study-assistant/internal/repository"
	"study-assistant/pkg/blob"
	"study-assistant/pkg/logger"
	"study-assistant/pkg/password"
	"study-assistant/pkg/redis"

	"go.uber.org/zap"
)

// snippetLimit 学习记录中保存的题目/问题最大长度（按字符）
const snippetLimit = 100

type UserService struct {
	users    *repository.UserRepository
	scheme   string
	presence *redis.Presence
	blobs    blob.Store
	now      func() time.Time
}

func NewUserService(users *repository.UserRepository, scheme string, presence *redis.Presence, blobs blob.Store) *UserService {
	return &UserService{
		users:    users,
		scheme:   scheme,
		presence: presence,
		blobs:    blobs,
		now:      time.Now,
	}
}

// SetClock 替换时钟
func (s *UserService) SetClock(now func() time.Time) {
	s.now = now
}

// ProfileUpdate 资料修改，nil 字段保持不变
type ProfileUpdate struct {
	Nickname     *string
	Email        *string
	NewPassword  *string
	ProfileImage *string
}

// Register 注册
func (s *UserService) Register(username, plainPassword, email, nickname string, profileImage *string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || plainPassword == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	// 摘要计算放在锁外
	hash, err := password.Hash(s.scheme, plainPassword)
	if err != nil {
		return err
	}

	return s.users.Collection().Update(func(items map[string]*model.User) error {
		if _, ok := items[username]; ok {
			return fmt.Errorf("%w: user %q", ErrAlreadyExists, username)
		}
		items[username] = &model.User{
			Password:     hash,
			Email:        email,
			Nickname:     nickname,
			ProfileImage: profileImage,
			CreatedAt:    s.now(),
			StudyRecords: []model.StudyRecord{},
			MyGroups:     model.NewStringSet(),
			MyChats:      model.NewStringSet(),
		}
		return nil
	})
}

// Authenticate 校验密码，成功后更新最近活跃时间
func (s *UserService) Authenticate(ctx context.Context, username, plainPassword string) (*model.User, error) {
	var out *model.User
	err := s.users.Update(username, func(u *model.User) error {
		if u == nil {
			return fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		if !password.Verify(plainPassword, u.Password) {
			return ErrWrongPassword
		}
		now := s.now()
		u.LastActive = &now
		out = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.markOnline(ctx, username)
	return out, nil
}

// UpdateProfile 只修改提供的字段
func (s *UserService) UpdateProfile(username string, upd ProfileUpdate) error {
	var hash string
	if upd.NewPassword != nil {
		if *upd.NewPassword == "" {
			return fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
		}
		h, err := password.Hash(s.scheme, *upd.NewPassword)
		if err != nil {
			return err
		}
		hash = h
	}

	return s.users.Update(username, func(u *model.User) error {
		if u == nil {
			return fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		if upd.Nickname != nil {
			u.Nickname = *upd.Nickname
		}
		if upd.Email != nil {
			u.Email = strings.TrimSpace(*upd.Email)
		}
		if upd.NewPassword != nil {
			u.Password = hash
		}
		if upd.ProfileImage != nil {
			img := *upd.ProfileImage
			u.ProfileImage = &img
		}
		return nil
	})
}

// RecoverUsername 按邮箱找回用户名
func (s *UserService) RecoverUsername(email string) (string, bool) {
	return s.users.FindByEmail(strings.TrimSpace(email))
}

// ResetPassword 生成临时密码，仅保存其摘要，明文只返回这一次
func (s *UserService) ResetPassword(username, email string) (string, error) {
	temp := password.NewTemporary()
	hash, err := password.Hash(s.scheme, temp)
	if err != nil {
		return "", err
	}

	err = s.users.Update(username, func(u *model.User) error {
		if u == nil {
			return fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		if u.Email != strings.TrimSpace(email) {
			return ErrEmailMismatch
		}
		u.Password = hash
		return nil
	})
	if err != nil {
		return "", err
	}
	return temp, nil
}

// Touch 记录一次活动
func (s *UserService) Touch(ctx context.Context, username string) error {
	err := s.users.Update(username, func(u *model.User) error {
		if u == nil {
			return fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		now := s.now()
		u.LastActive = &now
		return nil
	})
	if err != nil {
		return err
	}
	s.markOnline(ctx, username)
	return nil
}

// AddStudyRecord 追加学习记录，日期由服务端填写
func (s *UserService) AddStudyRecord(username string, rec model.StudyRecord) error {
	rec.Topic = truncate(rec.Topic, snippetLimit)
	rec.Problem = truncate(rec.Problem, snippetLimit)
	rec.Question = truncate(rec.Question, snippetLimit)

	return s.users.Update(username, func(u *model.User) error {
		if u == nil {
			return fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		rec.Date = s.now()
		u.StudyRecords = append(u.StudyRecords, rec)
		return nil
	})
}

// Get 获取用户副本
func (s *UserService) Get(username string) (*model.User, error) {
	u, ok := s.users.Get(username)
	if !ok {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
	}
	return u, nil
}

// Exists 用户是否存在
func (s *UserService) Exists(username string) bool {
	return s.users.Exists(username)
}

// Logout 清除在线状态
func (s *UserService) Logout(ctx context.Context, username string) {
	if err := s.presence.Offline(ctx, username); err != nil {
		logger.Warn("清除在线状态失败", zap.String("username", username), zap.Error(err))
	}
}

// OnlineUsers 近期活跃的用户，未启用 Redis 时返回 redis.ErrDisabled
func (s *UserService) OnlineUsers(ctx context.Context) ([]string, error) {
	return s.presence.OnlineUsers(ctx)
}

// SetProfileImage 保存头像并记录引用
func (s *UserService) SetProfileImage(ctx context.Context, username string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrInvalidInput)
	}
	if !s.users.Exists(username) {
		return "", fmt.Errorf("%w: user %q", ErrNotFound, username)
	}

	ref, err := s.blobs.Put(ctx, username, data, contentType)
	if err != nil {
		return "", fmt.Errorf("save profile image: %w", err)
	}

	if err := s.UpdateProfile(username, ProfileUpdate{ProfileImage: &ref}); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *UserService) markOnline(ctx context.Context, username string) {
	if err := s.presence.Online(ctx, username); err != nil {
		logger.Warn("更新在线状态失败", zap.String("username", username), zap.Error(err))
	}
}

// truncate 按字符截断
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// ProfileImage 读取头像
func (s *UserService) ProfileImage(ctx context.Context, username string) ([]byte, error) {
	data, err := s.blobs.Get(ctx, username)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, fmt.Errorf("%w: profile image of %q", ErrNotFound, username)
	}
	return data, err
}
