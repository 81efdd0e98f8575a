package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskInput carries the editable task fields. PartyType and PartyID are optional.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  *string    `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	PartyType   string     `json:"party_type"`
	PartyID     string     `json:"party_id"`
}

func (in *TaskInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if err := requireField("title", in.Title); err != nil {
		return err
	}
	if in.Priority != "" && !models.IsValidTaskPriority(in.Priority) {
		return NewValidationError("priority", "must be High, Medium or Low")
	}
	if in.Status != "" && !models.IsValidTaskStatus(in.Status) {
		return NewValidationError("status", "must be To Do, In Progress or Completed")
	}
	if in.PartyType != "" && !models.IsValidPartyType(in.PartyType) {
		return NewValidationError("party_type", "must be client or lead")
	}
	if in.PartyType != "" && in.PartyID == "" {
		return NewValidationError("party_id", "is required when party_type is set")
	}
	return nil
}

// TaskFilter narrows ListTasks
type TaskFilter struct {
	Status     string
	AssigneeID string
	PartyType  string
	PartyID    string
}

// CreateTask adds a task to the workspace list, attached to a party when one is given
func CreateTask(db *gorm.DB, workspaceID string, actor *models.User, in TaskInput) (*models.Task, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	task := &models.Task{
		WorkspaceID: workspaceID,
		Title:       in.Title,
		Description: StripHTML(in.Description),
		AssigneeID:  in.AssigneeID,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Status:      in.Status,
	}
	if actor != nil {
		task.CreatedByID = &actor.ID
	}
	if task.Status == models.TaskStatusCompleted {
		now := time.Now()
		task.CompletedAt = &now
	}

	return task, db.Transaction(func(tx *gorm.DB) error {
		var party models.Party
		if in.PartyType != "" {
			var err error
			party, err = GetParty(tx, workspaceID, in.PartyType, in.PartyID)
			if err != nil {
				return err
			}
			switch {
			case party.IsClient():
				task.ClientID = &party.Client.ID
			case party.IsLead():
				task.LeadID = &party.Lead.ID
			}
		}

		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		if in.PartyType != "" {
			_, err := AddPartyNote(tx, party, actor, models.ActivityTypeTask, "Task added: "+task.Title)
			return err
		}
		return nil
	})
}

// GetTask loads a workspace task
func GetTask(db *gorm.DB, workspaceID, taskID string) (*models.Task, error) {
	var task models.Task
	err := db.Where("workspace_id = ?", workspaceID).
		Preload("Assignee").
		First(&task, "id = ?", taskID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// ListTasks returns the workspace task list ordered by due date, undated last
func ListTasks(db *gorm.DB, workspaceID string, filter TaskFilter) ([]models.Task, error) {
	query := db.Where("workspace_id = ?", workspaceID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssigneeID != "" {
		query = query.Where("assignee_id = ?", filter.AssigneeID)
	}
	switch filter.PartyType {
	case models.PartyTypeClient:
		query = query.Where("client_id = ?", filter.PartyID)
	case models.PartyTypeLead:
		query = query.Where("lead_id = ?", filter.PartyID)
	}

	var tasks []models.Task
	err := query.Preload("Assignee").
		Order("CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC, created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

// UpdateTask replaces the editable fields. The owning party cannot change.
func UpdateTask(db *gorm.DB, task *models.Task, in TaskInput) error {
	in.PartyType, in.PartyID = "", ""
	if err := in.Validate(); err != nil {
		return err
	}
	updates := map[string]interface{}{
		"title":       in.Title,
		"description": StripHTML(in.Description),
		"assignee_id": in.AssigneeID,
		"due_date":    in.DueDate,
	}
	if in.Priority != "" {
		updates["priority"] = in.Priority
	}
	if err := db.Model(task).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if in.Status != "" && in.Status != task.Status {
		return UpdateTaskStatus(db, task, in.Status)
	}
	return nil
}

// UpdateTaskStatus changes the status and tracks completion time
func UpdateTaskStatus(db *gorm.DB, task *models.Task, status string) error {
	if !models.IsValidTaskStatus(status) {
		return NewValidationError("status", "must be To Do, In Progress or Completed")
	}
	var completedAt *time.Time
	if status == models.TaskStatusCompleted {
		now := time.Now()
		completedAt = &now
	}
	updates := map[string]interface{}{"status": status, "completed_at": completedAt}
	if err := db.Model(task).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	task.Status = status
	task.CompletedAt = completedAt
	return nil
}

// DeleteTask soft-deletes a task
func DeleteTask(db *gorm.DB, task *models.Task) error {
	return db.Delete(task).Error
}

// CountOpenTasks counts tasks not yet completed, optionally for one assignee
func CountOpenTasks(db *gorm.DB, workspaceID, assigneeID string) (int64, error) {
	query := db.Model(&models.Task{}).
		Where("workspace_id = ? AND status <> ?", workspaceID, models.TaskStatusCompleted)
	if assigneeID != "" {
		query = query.Where("assignee_id = ?", assigneeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// GetTasksDueForReminder returns open tasks due before the cutoff that have not been reminded yet
func GetTasksDueForReminder(db *gorm.DB, cutoff time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := db.Preload("Assignee").
		Where("status <> ? AND due_date IS NOT NULL AND due_date <= ? AND reminder_sent_at IS NULL AND assignee_id IS NOT NULL",
			models.TaskStatusCompleted, cutoff).
		Find(&tasks).Error
	return tasks, err
}

// MarkTaskReminderSent stamps the task so it is not reminded twice
func MarkTaskReminderSent(db *gorm.DB, taskID string) error {
	return db.Model(&models.Task{}).Where("id = ?", taskID).Update("reminder_sent_at", time.Now()).Error
}
