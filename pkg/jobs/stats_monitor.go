package jobs

import (
	"context"
	"log"
	"time"
)

// GenerationHistory is the history store subset the scheduled jobs need
type GenerationHistory interface {
	CountBetween(ctx context.Context, from, to time.Time) (int, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// historyRetention is how long delivered messages are kept before pruning
const historyRetention = 90 * 24 * time.Hour

// StatsMonitor produces daily generation statistics and prunes old history
type StatsMonitor struct {
	history GenerationHistory
	logger  *log.Logger
	now     func() time.Time
}

// NewStatsMonitor creates a new stats monitor
func NewStatsMonitor(history GenerationHistory, logger *log.Logger) *StatsMonitor {
	if logger == nil {
		logger = log.Default()
	}
	return &StatsMonitor{
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// DailyStats reports generations delivered yesterday and over the last week.
// Day boundaries are local, matching how the usage ledgers key their days.
func (m *StatsMonitor) DailyStats(ctx context.Context) (yesterday, lastWeek int, err error) {
	n := m.now()
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())

	yesterday, err = m.history.CountBetween(ctx, today.Add(-24*time.Hour), today)
	if err != nil {
		return 0, 0, err
	}

	lastWeek, err = m.history.CountBetween(ctx, today.Add(-7*24*time.Hour), today)
	if err != nil {
		return 0, 0, err
	}

	return yesterday, lastWeek, nil
}

// PruneHistory deletes generation history older than the retention window
func (m *StatsMonitor) PruneHistory(ctx context.Context) (int64, error) {
	cutoff := m.now().Add(-historyRetention)
	return m.history.DeleteBefore(ctx, cutoff)
}
