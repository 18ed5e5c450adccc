package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/orderdesk/internal/models"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StartCleanup schedules a daily job that deletes system_logs older than
// retentionDays. LOG_RETENTION_DAYS=0 keeps logs forever and returns a nil
// scheduler. The caller shuts the scheduler down on exit.
func StartCleanup(db *gorm.DB, retentionDays int) (gocron.Scheduler, error) {
	if retentionDays <= 0 {
		return nil, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(purge, db, retentionDays),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	return scheduler, nil
}

func purge(db *gorm.DB, retentionDays int) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected, "retention_days", retentionDays)
	}
}
