package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordVisit_DayRollover(t *testing.T) {
	e := newEnv(t)

	first := e.stats.RecordVisit()
	assert.Equal(t, int64(1), first.TotalVisitors)
	assert.Equal(t, int64(1), first.Today("2024-03-01"))

	second := e.stats.RecordVisit()
	assert.Equal(t, int64(2), second.Today("2024-03-01"))

	e.clock.Advance(24 * time.Hour)
	next := e.stats.RecordVisit()
	assert.Equal(t, first.TotalVisitors+2, next.TotalVisitors)
	assert.Equal(t, int64(1), next.Today("2024-03-02"))
	assert.Equal(t, int64(0), next.Today("2024-03-01"))
	assert.Equal(t, "2024-03-02", next.LastReset)
}

func TestToday_NoVisitsYetAfterMidnight(t *testing.T) {
	e := newEnv(t)
	e.stats.RecordVisit()
	e.stats.RecordVisit()

	e.clock.Advance(24 * time.Hour)
	assert.Equal(t, "2024-03-02", e.stats.Today())

	st := e.stats.RecomputeUserStats()
	assert.Equal(t, int64(2), st.TotalVisitors)
	assert.Equal(t, "2024-03-01", st.LastReset)
	assert.Equal(t, int64(0), st.Today(e.stats.Today()))
}

func TestRecordVisit_Persists(t *testing.T) {
	e := newEnv(t)
	e.stats.RecordVisit()
	e.stats.RecordVisit()

	restarted := buildEnv(e.store, nil, true)
	got := restarted.stats.Get()
	assert.Equal(t, int64(2), got.TotalVisitors)
	assert.Equal(t, int64(2), got.Today("2024-03-01"))
}

func TestRecomputeUserStats(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "bob", "carol")

	st := e.stats.RecomputeUserStats()
	assert.Equal(t, 3, st.RegisteredUsers)
	assert.Empty(t, st.ActiveUsers)

	_, err := e.users.Authenticate(context.Background(), "alice", "pw-alice")
	require.NoError(t, err)

	// 活跃集合只在显式重算时更新
	assert.Empty(t, e.stats.Get().ActiveUsers)

	st = e.stats.RecomputeUserStats()
	assert.Equal(t, []string{"alice"}, st.ActiveUsers.Sorted())

	require.NoError(t, e.users.Touch(context.Background(), "bob"))
	st = e.stats.RecomputeUserStats()
	assert.Equal(t, []string{"alice", "bob"}, st.ActiveUsers.Sorted())
}
