package service

import (
	"time"

	"study-assistant/internal/model"
	"study-assistant/internal/repository"
)

// StatsService 站点统计
type StatsService struct {
	stats *repository.StatsRepository
	users *repository.UserRepository
	now   func() time.Time
}

func NewStatsService(stats *repository.StatsRepository, users *repository.UserRepository) *StatsService {
	return &StatsService{stats: stats, users: users, now: time.Now}
}

func (s *StatsService) SetClock(now func() time.Time) {
	s.now = now
}

// Today 当前日期，按天计数的键
func (s *StatsService) Today() string {
	return s.now().Format(model.DateLayout)
}

// RecordVisit 记录一次访问；日期变化时清空按天计数
func (s *StatsService) RecordVisit() model.SiteStats {
	today := s.Today()
	out, _ := s.stats.Update(func(st *model.SiteStats) error {
		st.TotalVisitors++
		if st.LastReset != today || st.DailyVisitors == nil {
			st.DailyVisitors = map[string]int64{}
			st.LastReset = today
		}
		st.DailyVisitors[today]++
		return nil
	})
	return out
}

// RecomputeUserStats 重算注册用户数和累计活跃用户集合
func (s *StatsService) RecomputeUserStats() model.SiteStats {
	count := s.users.Count()
	active := s.users.EverActive()
	out, _ := s.stats.Update(func(st *model.SiteStats) error {
		st.RegisteredUsers = count
		st.ActiveUsers = active
		return nil
	})
	return out
}

// Get 当前统计
func (s *StatsService) Get() model.SiteStats {
	return s.stats.Get()
}
