package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task priorities
const (
	TaskPriorityHigh   = "High"
	TaskPriorityMedium = "Medium"
	TaskPriorityLow    = "Low"
)

// Task statuses
const (
	TaskStatusToDo       = "To Do"
	TaskStatusInProgress = "In Progress"
	TaskStatusCompleted  = "Completed"
)

// Task lives in one workspace-wide table. ClientID and LeadID are both optional
// and at most one is set.
type Task struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	WorkspaceID string `gorm:"type:uuid;not null;index" json:"workspace_id"`

	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	DueDate     *time.Time `gorm:"index" json:"due_date,omitempty"`
	Priority    string     `gorm:"not null;default:Medium" json:"priority"`
	Status      string     `gorm:"not null;default:To Do;index" json:"status"`

	AssigneeID *string `gorm:"type:uuid;index" json:"assignee_id,omitempty"`
	Assignee   *User   `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`

	ClientID *string `gorm:"type:uuid;index" json:"client_id,omitempty"`
	LeadID   *string `gorm:"type:uuid;index" json:"lead_id,omitempty"`

	CreatedByID    *string    `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ReminderSentAt *time.Time `json:"-"`
}

// BeforeCreate hook to generate UUID
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	if t.Status == "" {
		t.Status = TaskStatusToDo
	}
	return nil
}

// TableName specifies the table name for Task model
func (Task) TableName() string {
	return "tasks"
}

// PartyType returns "client", "lead", or "" for a free-standing task
func (t *Task) PartyType() string {
	switch {
	case t.ClientID != nil:
		return PartyTypeClient
	case t.LeadID != nil:
		return PartyTypeLead
	}
	return ""
}

// IsOverdue reports whether an open task is past its due date
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.Status != TaskStatusCompleted && t.DueDate.Before(now)
}

func IsValidTaskPriority(p string) bool {
	return p == TaskPriorityHigh || p == TaskPriorityMedium || p == TaskPriorityLow
}

func IsValidTaskStatus(s string) bool {
	return s == TaskStatusToDo || s == TaskStatusInProgress || s == TaskStatusCompleted
}
