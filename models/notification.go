package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification types
const (
	NotificationTypeTaskDue    = "TASK_DUE"
	NotificationTypeLeadUpdate = "LEAD_UPDATE"
	NotificationTypeIntake     = "INTAKE_SUBMITTED"
	NotificationTypeSystem     = "SYSTEM"
)

type Notification struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	WorkspaceID string  `gorm:"type:uuid;not null;index" json:"workspace_id"`
	UserID      *string `gorm:"type:uuid;index" json:"user_id,omitempty"` // nil = everyone in the workspace

	TaskID   *string `gorm:"type:uuid" json:"task_id,omitempty"`
	ClientID *string `gorm:"type:uuid" json:"client_id,omitempty"`
	LeadID   *string `gorm:"type:uuid" json:"lead_id,omitempty"`

	Type    string `gorm:"not null" json:"type"`
	Title   string `gorm:"not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`
	LinkURL string `json:"link_url,omitempty"`

	ReadAt *time.Time `json:"read_at,omitempty"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return nil
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
