package utils

import (
	"elearn/database"
	"elearn/logger"
	courseModels "elearn/models/course"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// InitializeEnrollmentScheduler starts the daily expiry sweep for
// time-limited enrollments.
func InitializeEnrollmentScheduler(log *logger.Logger) *cron.Cron {
	c := cron.New()

	// Run daily shortly after midnight
	if _, err := c.AddFunc("10 0 * * *", func() {
		ExpireEnrollments(log)
	}); err != nil {
		log.Error("failed to schedule enrollment expiry", "error", err)
		return c
	}

	c.Start()
	log.Info("enrollment expiry scheduler started")
	return c
}

// ExpireEnrollments marks ACTIVE enrollments whose validity window has
// closed as EXPIRED. Lesson history stays in place so a re-enrollment
// picks up where the learner left off.
func ExpireEnrollments(log *logger.Logger) {
	db := database.Database.Db
	today := now.BeginningOfDay()

	result := db.Model(&courseModels.Enrollment{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ? AND is_deleted = ?",
			courseModels.EnrollmentActive, today, false).
		Updates(map[string]interface{}{
			"status":  courseModels.EnrollmentExpired,
			"version": gorm.Expr("version + 1"),
		})

	if result.Error != nil {
		log.Error("failed to expire enrollments", "error", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Info("expired enrollments", "count", result.RowsAffected)
	}
}
