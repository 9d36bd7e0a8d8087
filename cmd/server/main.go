package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"study-assistant/config"
	"study-assistant/internal/handler"
	"study-assistant/internal/repository"
	"study-assistant/internal/service"
	"study-assistant/pkg/blob"
	dbPkg "study-assistant/pkg/db"
	"study-assistant/pkg/errlog"
	"study-assistant/pkg/jwt"
	"study-assistant/pkg/llm"
	"study-assistant/pkg/logger"
	redisPkg "study-assistant/pkg/redis"
	"study-assistant/pkg/response"
	"study-assistant/pkg/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== 学习助手启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.String("blob_backend", cfg.Blob.Backend),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("strict_membership", cfg.Membership.Strict),
		zap.String("password_scheme", cfg.Password.Scheme),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 错误日志
	errs := errlog.New(cfg.ErrorLog)
	defer func() {
		if err := errs.Close(); err != nil {
			log.Error("关闭错误日志失败", zap.Error(err))
		}
	}()

	// 4. 初始化文档存储
	backend := newBackend(cfg, log)
	if cfg.Storage.Backend == "sql" {
		defer func() {
			if err := dbPkg.CloseDB(); err != nil {
				log.Error("关闭数据库连接失败", zap.Error(err))
			}
		}()
	}
	docs := store.New(backend)
	docs.OnFailure(func(document string, err error) {
		errs.Log(errlog.KindStorage, document+": "+err.Error(), "")
	})
	log.Info("文档存储就绪", zap.String("backend", cfg.Storage.Backend))

	// 5. Redis 在线状态（可选）
	var presence *redisPkg.Presence
	if cfg.Redis.Enabled {
		client, err := redisPkg.InitRedis(context.Background(), cfg.Redis)
		if err != nil {
			log.Warn("Redis连接失败，在线状态镜像关闭", zap.Error(err))
		} else {
			presence = redisPkg.NewPresence(client)
			defer func() {
				if err := redisPkg.Close(); err != nil {
					log.Error("关闭Redis连接失败", zap.Error(err))
				}
			}()
			log.Info("Redis连接成功")
		}
	}

	// 6. 头像存储
	blobs := newBlobStore(cfg, log)

	// 7. 文本生成服务
	gen := newGenerator(cfg, log)

	// 8. 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	userRepo := repository.NewUserRepository(docs)
	sessionSvc := service.NewSessionService(repository.NewSessionRepository(docs))
	userSvc := service.NewUserService(userRepo, cfg.Password.Scheme, presence, blobs)
	groupSvc := service.NewGroupService(repository.NewGroupRepository(docs), userRepo, cfg.Membership.Strict)
	chatSvc := service.NewChatService(repository.NewChatRepository(docs), userRepo, sessionSvc, cfg.Membership.Strict)
	statsSvc := service.NewStatsService(repository.NewStatsRepository(docs), userRepo)
	studySvc := service.NewStudyService(gen, userSvc, groupSvc, errs)

	handlers := &handler.Handlers{
		User:  handler.NewUserHandler(userSvc, sessionSvc, chatSvc, statsSvc, jwtSvc),
		Group: handler.NewGroupHandler(groupSvc, studySvc),
		Chat:  handler.NewChatHandler(chatSvc, sessionSvc),
		Study: handler.NewStudyHandler(studySvc),
		Stats: handler.NewStatsHandler(statsSvc),
	}

	// 9. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 10. 创建路由
	router := handler.NewRouter(handlers, jwtSvc, errs)
	setupBasicRoutes(router, cfg, backend, presence)

	// 11. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 12. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// newBackend 按配置选择文件或数据库文档存储
func newBackend(cfg *config.Config, log *zap.Logger) store.Backend {
	if cfg.Storage.Backend == "sql" {
		gdb, err := dbPkg.InitDB(cfg.Storage.Database)
		if err != nil {
			log.Fatal("数据库连接失败", zap.Error(err))
		}
		backend, err := store.NewSQLBackend(gdb)
		if err != nil {
			log.Fatal("初始化文档表失败", zap.Error(err))
		}
		return backend
	}

	backend, err := store.NewFileBackend(cfg.Storage.DataDir)
	if err != nil {
		log.Fatal("初始化数据目录失败", zap.Error(err), zap.String("dir", cfg.Storage.DataDir))
	}
	return backend
}

// newBlobStore 按配置选择本地目录或S3
func newBlobStore(cfg *config.Config, log *zap.Logger) blob.Store {
	if cfg.Blob.Backend == "s3" {
		s3Store, err := blob.NewS3Store(context.Background(), cfg.Blob)
		if err != nil {
			log.Fatal("初始化S3存储失败", zap.Error(err))
		}
		return s3Store
	}

	fileStore, err := blob.NewFileStore(cfg.Blob.Dir)
	if err != nil {
		log.Fatal("初始化头像目录失败", zap.Error(err), zap.String("dir", cfg.Blob.Dir))
	}
	return fileStore
}

// newGenerator 未配置 API Key 时所有生成请求都返回失败文本
func newGenerator(cfg *config.Config, log *zap.Logger) llm.Generator {
	var inner llm.Generator = llm.Unavailable{}
	if cfg.LLM.APIKey != "" {
		g, err := llm.NewGeminiGenerator(context.Background(), cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			log.Error("初始化文本生成服务失败", zap.Error(err))
		} else {
			inner = g
		}
	} else {
		log.Warn("未配置文本生成 API Key，生成功能不可用")
	}
	return llm.NewRetrying(inner, cfg.LLM.Timeout, cfg.LLM.MaxRetries)
}

// setupBasicRoutes 设置基础路由
func setupBasicRoutes(router *gin.Engine, cfg *config.Config, backend store.Backend, presence *redisPkg.Presence) {
	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		checks := gin.H{}
		status := "ok"

		if _, err := backend.Names(); err != nil {
			checks["storage"] = err.Error()
			status = "degraded"
		} else {
			checks["storage"] = "ok"
		}
		if cfg.Storage.Backend == "sql" {
			if err := dbPkg.HealthCheck(); err != nil {
				checks["database"] = err.Error()
				status = "degraded"
			} else {
				checks["database"] = "ok"
			}
		}
		if presence.Enabled() {
			if err := redisPkg.HealthCheck(c.Request.Context()); err != nil {
				checks["redis"] = err.Error()
				status = "degraded"
			} else {
				checks["redis"] = "ok"
			}
		}

		response.Success(c, gin.H{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// 根路径
	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "欢迎使用学习助手",
			"version": "1.0.0",
		})
	})
}
