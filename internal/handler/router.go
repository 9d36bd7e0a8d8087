package handler

import (
	"study-assistant/pkg/errlog"
	"study-assistant/pkg/jwt"
	"study-assistant/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers 全部接口处理器
type Handlers struct {
	User  *UserHandler
	Group *GroupHandler
	Chat  *ChatHandler
	Study *StudyHandler
	Stats *StatsHandler
}

// NewRouter 创建路由并挂载中间件
func NewRouter(h *Handlers, tokens *jwt.JWTService, errs *errlog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(logger.RequestLogger())
	router.Use(errlog.Recovery(errs))

	RegisterRoutes(router, h, tokens)
	return router
}

// RegisterRoutes 绑定 /api/v1 下的业务路由
func RegisterRoutes(router *gin.Engine, h *Handlers, tokens *jwt.JWTService) {
	v1 := router.Group("/api/v1")

	// 公开接口（无需认证）
	users := v1.Group("/users")
	{
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/recover-username", h.User.RecoverUsername)
		users.POST("/reset-password", h.User.ResetPassword)
	}
	v1.POST("/stats/visit", h.Stats.Visit)
	v1.GET("/stats", h.Stats.Get)

	// 需要认证的接口
	auth := v1.Group("")
	auth.Use(tokens.AuthMiddleware(h.User.CheckClient), h.User.Activity())
	{
		auth.GET("/users/me", h.User.GetProfile)
		auth.PATCH("/users/me", h.User.UpdateProfile)
		auth.PUT("/users/me/image", h.User.UploadImage)
		auth.GET("/profile-images/:username", h.User.GetImage)
		auth.POST("/users/logout", h.User.Logout)
		auth.GET("/users/online", h.User.GetOnlineUsers)

		groups := auth.Group("/groups")
		groups.GET("", h.Group.List)
		groups.POST("", h.Group.Create)
		groups.GET("/:name", h.Group.Get)
		groups.DELETE("/:name", h.Group.Delete)
		groups.POST("/:name/plans", h.Group.CreatePlan)
		groups.POST("/:name/discussions", h.Group.CreateDiscussion)
		groups.POST("/:name/discussions/:index/comments", h.Group.AddComment)

		rooms := auth.Group("/rooms")
		rooms.GET("", h.Chat.List)
		rooms.POST("", h.Chat.Create)
		rooms.GET("/:name", h.Chat.Get)
		rooms.POST("/:name/open", h.Chat.Open)
		rooms.POST("/:name/enter", h.Chat.Enter)
		rooms.POST("/:name/leave", h.Chat.Leave)
		rooms.POST("/:name/messages", h.Chat.PostMessage)
		rooms.GET("/:name/timeline", h.Chat.Timeline)

		study := auth.Group("/study")
		study.POST("/explain", h.Study.Explain)
		study.POST("/solve", h.Study.Solve)
		study.POST("/ask", h.Study.Ask)
		study.POST("/similar", h.Study.Similar)
		study.GET("/summary", h.Study.Summary)
	}
}
