package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"study-assistant/internal/repository"
	"study-assistant/internal/service"
	"study-assistant/pkg/blob"
	"study-assistant/pkg/password"
	"study-assistant/pkg/store"
)

// 并发写入检查：多个协程同时注册、建房、进出房间、发消息，
// 结束后从磁盘重新加载，核对没有丢失的更新。

type OpStats struct {
	Total          int
	Failed         int
	AverageLatency time.Duration
	MaxLatency     time.Duration
	mu             sync.Mutex
}

func (s *OpStats) Add(err error, latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Total++
	if err != nil {
		s.Failed++
		return
	}
	if s.AverageLatency == 0 {
		s.AverageLatency = latency
	} else {
		s.AverageLatency = (s.AverageLatency + latency) / 2
	}
	if latency > s.MaxLatency {
		s.MaxLatency = latency
	}
}

func timed(stats *OpStats, fn func() error) {
	start := time.Now()
	err := fn()
	stats.Add(err, time.Since(start))
}

type services struct {
	users *service.UserService
	chats *service.ChatService
	repo  *repository.ChatRepository
	urepo *repository.UserRepository
}

func open(dir string) (*services, error) {
	backend, err := store.NewFileBackend(dir)
	if err != nil {
		return nil, err
	}
	s := store.New(backend)
	blobs, err := blob.NewFileStore(dir + "/profile_images")
	if err != nil {
		return nil, err
	}
	userRepo := repository.NewUserRepository(s)
	chatRepo := repository.NewChatRepository(s)
	return &services{
		users: service.NewUserService(userRepo, password.SchemeSHA256, nil, blobs),
		chats: service.NewChatService(chatRepo, userRepo, nil, true),
		repo:  chatRepo,
		urepo: userRepo,
	}, nil
}

func argInt(i, def int) int {
	if len(os.Args) > i {
		if v, err := strconv.Atoi(os.Args[i]); err == nil {
			return v
		}
	}
	return def
}

func main() {
	concurrency := argInt(1, 8)
	perGoroutine := argInt(2, 20)

	dir, err := os.MkdirTemp("", "study-bench-*")
	if err != nil {
		fmt.Println("创建临时目录失败:", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	fmt.Println("=== 并发写入检查 ===")
	fmt.Printf("开始时间: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("并发: %d 每协程消息: %d 数据目录: %s\n", concurrency, perGoroutine, dir)

	svc, err := open(dir)
	if err != nil {
		fmt.Println("初始化失败:", err)
		os.Exit(1)
	}

	stats := &OpStats{}
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("user%d", id)
			room := fmt.Sprintf("room%d", id)

			timed(stats, func() error { return svc.users.Register(name, "pw", name+"@bench.local", name, nil) })
			timed(stats, func() error {
				_, err := svc.chats.Create(room, name, nil)
				return err
			})
			for j := 0; j < perGoroutine; j++ {
				timed(stats, func() error { return svc.chats.Enter(room, name) })
				timed(stats, func() error { return svc.chats.PostMessage(room, name, fmt.Sprintf("msg %d", j)) })
				timed(stats, func() error { return svc.users.Touch(context.Background(), name) })
				timed(stats, func() error { return svc.chats.Leave(room, name) })
			}
		}(i)
	}
	wg.Wait()
	took := time.Since(start)

	fmt.Println("\n=== 操作统计 ===")
	fmt.Printf("耗时: %v Goroutines: %d\n", took, runtime.NumGoroutine())
	fmt.Printf("总操作: %d 失败: %d\n", stats.Total, stats.Failed)
	fmt.Printf("延迟 平均: %v 最大: %v\n", stats.AverageLatency, stats.MaxLatency)
	if took > 0 {
		fmt.Printf("OPS: %.2f\n", float64(stats.Total-stats.Failed)/took.Seconds())
	}

	// 重新加载，核对落盘结果
	reloaded, err := open(dir)
	if err != nil {
		fmt.Println("重新加载失败:", err)
		os.Exit(1)
	}

	lost := 0
	if n := reloaded.urepo.Count(); n != concurrency {
		fmt.Printf("用户数不符: 期望 %d 实际 %d\n", concurrency, n)
		lost++
	}
	for i := 0; i < concurrency; i++ {
		name := fmt.Sprintf("user%d", i)
		room := fmt.Sprintf("room%d", i)
		r, ok := reloaded.repo.Get(room)
		if !ok {
			fmt.Printf("聊天室丢失: %s\n", room)
			lost++
			continue
		}
		if len(r.Messages) != perGoroutine {
			fmt.Printf("%s 消息数不符: 期望 %d 实际 %d\n", room, perGoroutine, len(r.Messages))
			lost++
		}
		if u, ok := reloaded.urepo.Get(name); !ok || !u.MyChats.Has(room) {
			fmt.Printf("%s 的聊天室列表缺少 %s\n", name, room)
			lost++
		}
	}

	if lost > 0 {
		fmt.Printf("\n=== 检查失败：%d 处更新丢失 ===\n", lost)
		os.Exit(1)
	}
	fmt.Println("\n=== 检查通过：没有丢失的更新 ===")
}
