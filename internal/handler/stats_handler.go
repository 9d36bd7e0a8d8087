package handler

import (
	"study-assistant/internal/model"
	"study-assistant/internal/service"
	"study-assistant/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	stats *service.StatsService
}

func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// statsView 对外展示的统计
type statsView struct {
	TotalVisitors   int64    `json:"total_visitors"`
	TodayVisitors   int64    `json:"today_visitors"`
	RegisteredUsers int      `json:"registered_users"`
	ActiveUsers     []string `json:"active_users"`
	Date            string   `json:"date"`
}

// toView 今日访问数按当前日期取，当天还没有访问时为 0
func toView(st model.SiteStats, today string) statsView {
	return statsView{
		TotalVisitors:   st.TotalVisitors,
		TodayVisitors:   st.Today(today),
		RegisteredUsers: st.RegisteredUsers,
		ActiveUsers:     st.ActiveUsers.Sorted(),
		Date:            today,
	}
}

// Get 重算用户统计后返回
func (h *StatsHandler) Get(c *gin.Context) {
	response.Success(c, toView(h.stats.RecomputeUserStats(), h.stats.Today()))
}

// Visit 记录一次页面访问
func (h *StatsHandler) Visit(c *gin.Context) {
	response.Success(c, toView(h.stats.RecordVisit(), h.stats.Today()))
}
