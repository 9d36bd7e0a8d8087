package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"study-assistant/internal/repository"
	"study-assistant/pkg/blob"
	"study-assistant/pkg/errlog"
	"study-assistant/pkg/llm"
	"study-assistant/pkg/password"
	"study-assistant/pkg/redis"
	"study-assistant/pkg/store"

	"github.com/stretchr/testify/require"
)

// clock 可手动推进的时钟
type clock struct {
	t time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	store    *store.Store
	clock    *clock
	errBuf   *bytes.Buffer
	users    *UserService
	groups   *GroupService
	chats    *ChatService
	stats    *StatsService
	sessions *SessionService
	study    *StudyService
	gen      *fakeGenerator
	userRepo *repository.UserRepository
}

type fakeGenerator struct {
	prompts []string
	err     error
	during  func()
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return "", f.err
	}
	return "generated", nil
}

var _ llm.Generator = (*fakeGenerator)(nil)

type options struct {
	permissive bool
}

func newEnv(t *testing.T, opts ...options) *env {
	t.Helper()
	var o options
	if len(opts) > 0 {
		o = opts[0]
	}

	dir := t.TempDir()
	backend, err := store.NewFileBackend(dir)
	require.NoError(t, err)
	s := store.New(backend)

	blobs, err := blob.NewFileStore(t.TempDir())
	require.NoError(t, err)

	return buildEnv(s, blobs, !o.permissive)
}

// buildEnv 基于同一个 Store 构建全部服务，可用于模拟进程重启
func buildEnv(s *store.Store, blobs blob.Store, strict bool) *env {
	c := newClock()
	var errBuf bytes.Buffer
	errs := errlog.NewWithWriter(&errBuf)
	errs.SetClock(c.Now)

	userRepo := repository.NewUserRepository(s)
	users := NewUserService(userRepo, password.SchemeSHA256, redis.NewPresence(nil), blobs)
	users.SetClock(c.Now)

	groups := NewGroupService(repository.NewGroupRepository(s), userRepo, strict)
	groups.SetClock(c.Now)

	sessions := NewSessionService(repository.NewSessionRepository(s))
	sessions.SetClock(c.Now)

	chats := NewChatService(repository.NewChatRepository(s), userRepo, sessions, strict)
	chats.SetClock(c.Now)

	stats := NewStatsService(repository.NewStatsRepository(s), userRepo)
	stats.SetClock(c.Now)

	gen := &fakeGenerator{}
	study := NewStudyService(gen, users, groups, errs)

	return &env{
		store:    s,
		clock:    c,
		errBuf:   &errBuf,
		users:    users,
		groups:   groups,
		chats:    chats,
		stats:    stats,
		sessions: sessions,
		study:    study,
		gen:      gen,
		userRepo: userRepo,
	}
}

func (e *env) register(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, e.users.Register(name, "pw-"+name, name+"@x.com", name, nil))
	}
}
