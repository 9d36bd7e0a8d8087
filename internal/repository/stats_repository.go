package repository

import (
	"study-assistant/internal/model"
	"study-assistant/pkg/store"
)

// StatsRepository site_stats.json
type StatsRepository struct {
	*store.Document[model.SiteStats]
}

func NewStatsRepository(s *store.Store) *StatsRepository {
	return &StatsRepository{store.NewDocument(s, StatsDocument, model.NewSiteStats)}
}
