package model

// SiteStats 站点统计（site_stats.json，单例）
// ActiveUsers 为累计“曾经活跃”快照，按需整体重算
type SiteStats struct {
	TotalVisitors   int64            `json:"total_visitors"`
	RegisteredUsers int              `json:"registered_users"`
	ActiveUsers     StringSet        `json:"active_users"`
	DailyVisitors   map[string]int64 `json:"daily_visitors"`
	LastReset       string           `json:"last_reset"`
}

// DateLayout 按天统计使用的 ISO 日期格式
const DateLayout = "2006-01-02"

// Today 返回今日访问数
func (s *SiteStats) Today(date string) int64 {
	return s.DailyVisitors[date]
}

// NewSiteStats 默认统计
func NewSiteStats() SiteStats {
	return SiteStats{
		ActiveUsers:   NewStringSet(),
		DailyVisitors: map[string]int64{},
	}
}
