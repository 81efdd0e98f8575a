package jobs

import (
	"log"
	"time"

	"visa_crm_go/config"
	"visa_crm_go/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartScheduler registers the recurring jobs and starts the cron runner.
// The returned cron must be stopped on shutdown.
func StartScheduler(database *gorm.DB, cfg *config.Config) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC))

	if _, err := c.AddFunc(cfg.TaskReminderCron, func() {
		log.Println("[CRON] Running task reminders...")
		SendTaskReminders(database, cfg, time.Now())
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc("@hourly", func() {
		if err := services.CleanupExpiredSessions(database); err != nil {
			log.Printf("[CRON] Session cleanup failed: %v", err)
		}
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[CRON] Scheduler started (task reminders: %q)", cfg.TaskReminderCron)
	return c, nil
}
