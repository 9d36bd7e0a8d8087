package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrDisabled 未启用 Redis 时在线状态不可用
var ErrDisabled = errors.New("presence disabled")

// 在线状态相关常量
const (
	PresenceKeyPrefix = "study:presence:user:" // 用户在线状态key前缀
	OnlineUsersKey    = "study:online:users"   // 在线用户集合key
	PresenceTTL       = 15 * time.Minute       // 无活动超过该时长视为离线
)

// Presence 用户在线状态镜像
// users.json 中的 last_active 是持久的"曾经活跃"记录，这里只保存带过期时间的近期活跃标记
// nil 或未连接时所有写操作都是空操作
type Presence struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPresence 创建在线状态镜像，client 为 nil 时禁用
func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client, ttl: PresenceTTL}
}

// Enabled 是否启用
func (p *Presence) Enabled() bool {
	return p != nil && p.client != nil
}

func presenceKey(username string) string {
	return PresenceKeyPrefix + username
}

// Online 标记用户在线（登录或任意活动时调用）
func (p *Presence) Online(ctx context.Context, username string) error {
	if !p.Enabled() {
		return nil
	}

	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, presenceKey(username), time.Now().Unix(), p.ttl)
		pipe.SAdd(ctx, OnlineUsersKey, username)
		return nil
	})
	if err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}
	return nil
}

// Offline 移除用户在线状态（登出时调用）
func (p *Presence) Offline(ctx context.Context, username string) error {
	if !p.Enabled() {
		return nil
	}

	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, presenceKey(username))
		pipe.SRem(ctx, OnlineUsersKey, username)
		return nil
	})
	if err != nil {
		return fmt.Errorf("删除用户在线状态失败: %w", err)
	}
	return nil
}

// OnlineUsers 返回在线用户列表，顺带清理已过期的集合成员
func (p *Presence) OnlineUsers(ctx context.Context) ([]string, error) {
	if !p.Enabled() {
		return nil, ErrDisabled
	}

	members, err := p.client.SMembers(ctx, OnlineUsersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("获取在线用户列表失败: %w", err)
	}

	online := make([]string, 0, len(members))
	var stale []interface{}
	for _, username := range members {
		n, err := p.client.Exists(ctx, presenceKey(username)).Result()
		if err != nil {
			return nil, fmt.Errorf("检查用户在线状态失败: %w", err)
		}
		if n == 0 {
			stale = append(stale, username)
			continue
		}
		online = append(online, username)
	}
	if len(stale) > 0 {
		p.client.SRem(ctx, OnlineUsersKey, stale...)
	}

	sort.Strings(online)
	return online, nil
}
