package jobs

import (
	"log"
	"time"

	"visa_crm_go/config"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"gorm.io/gorm"
)

// ReminderWindow is how far ahead a due date triggers a reminder
const ReminderWindow = 24 * time.Hour

// SendTaskReminders notifies and emails assignees of open tasks due within the window.
// Each task is reminded once.
func SendTaskReminders(database *gorm.DB, cfg *config.Config, now time.Time) int {
	log.Println("[JOB] Starting task reminder job...")

	tasks, err := services.GetTasksDueForReminder(database, now.Add(ReminderWindow))
	if err != nil {
		log.Printf("[JOB] Error fetching tasks for reminders: %v", err)
		return 0
	}

	log.Printf("[JOB] Found %d tasks to remind", len(tasks))

	notifications := services.NewNotificationService(database)
	sent := 0
	for i := range tasks {
		task := &tasks[i]

		if _, err := notifications.NotifyTaskDue(task); err != nil {
			log.Printf("[JOB] Failed to create notification for task %s: %v", task.ID, err)
			continue
		}

		if task.Assignee != nil && task.Assignee.Email != "" {
			email := services.BuildTaskReminderEmail(task.Assignee.Email, task.Assignee.Language, services.TaskReminderEmailData{
				AssigneeName: task.Assignee.Name,
				TaskTitle:    task.Title,
				DueDate:      services.FormatEmailDate(*task.DueDate),
				Priority:     task.Priority,
				PartyName:    partyName(database, task),
				TaskURL:      cfg.AppURL + "/tasks/" + task.ID,
			})
			if err := services.SendEmail(cfg, email); err != nil {
				log.Printf("[JOB] Failed to email reminder for task %s: %v", task.ID, err)
			}
		}

		if err := services.MarkTaskReminderSent(database, task.ID); err != nil {
			log.Printf("[JOB] Failed to mark task %s reminded: %v", task.ID, err)
			continue
		}
		sent++
	}

	log.Printf("[JOB] Task reminder job completed (%d reminded)", sent)
	return sent
}

func partyName(database *gorm.DB, task *models.Task) string {
	partyType := task.PartyType()
	if partyType == "" {
		return ""
	}
	id := task.ClientID
	if partyType == models.PartyTypeLead {
		id = task.LeadID
	}
	party, err := services.GetParty(database, task.WorkspaceID, partyType, *id)
	if err != nil {
		return ""
	}
	return party.Name()
}
