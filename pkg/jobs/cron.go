package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron    *cron.Cron
	monitor *StatsMonitor
	logger  *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(history GenerationHistory, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:    cron.New(),
		monitor: NewStatsMonitor(history, logger),
		logger:  logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	// Daily at 3 AM: prune generation history past retention
	_, err := cm.cron.AddFunc("0 3 * * *", func() {
		cm.logger.Println("🕐 Running history retention job...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		deleted, err := cm.monitor.PruneHistory(ctx)
		if err != nil {
			cm.logger.Printf("❌ Failed to prune generation history: %v", err)
			return
		}

		cm.logger.Printf("✅ History retention job completed, deleted %d rows", deleted)
	})
	if err != nil {
		return err
	}

	// Daily at 4 AM: log generation statistics
	_, err = cm.cron.AddFunc("0 4 * * *", func() {
		cm.logger.Println("🕐 Logging generation statistics...")

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		yesterday, lastWeek, err := cm.monitor.DailyStats(ctx)
		if err != nil {
			cm.logger.Printf("❌ Failed to get generation stats: %v", err)
			return
		}

		cm.logger.Printf("📊 Generation statistics:")
		cm.logger.Printf("  Yesterday: %d", yesterday)
		cm.logger.Printf("  Last 7 days: %d", lastWeek)
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Println("  - Daily at 3 AM: Prune generation history")
	cm.logger.Println("  - Daily at 4 AM: Log generation statistics")

	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	cm.cron.Stop()
}

// GetMonitor returns the stats monitor (for manual triggers)
func (cm *CronManager) GetMonitor() *StatsMonitor {
	return cm.monitor
}
