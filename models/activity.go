package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity entry types
const (
	ActivityTypeNote         = "note"
	ActivityTypeStatusChange = "status_change"
	ActivityTypeConversion   = "conversion"
	ActivityTypeTask         = "task"
	ActivityTypeDocument     = "document"
	ActivityTypeAgreement    = "agreement"
	ActivityTypeIntake       = "intake"
	ActivityTypeEmail        = "email"
	ActivityTypeCall         = "call"
)

// Activity is one timeline entry on a client or a lead. Exactly one of ClientID and LeadID is set.
type Activity struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	WorkspaceID string  `gorm:"type:uuid;not null;index" json:"workspace_id"`
	ClientID    *string `gorm:"type:uuid;index" json:"client_id,omitempty"`
	LeadID      *string `gorm:"type:uuid;index" json:"lead_id,omitempty"`

	Type        string `gorm:"not null" json:"type"`
	Description string `gorm:"type:text;not null" json:"description"`

	ActorID   *string `gorm:"type:uuid" json:"actor_id,omitempty"`
	ActorName string  `json:"actor_name,omitempty"`
}

// BeforeCreate hook to generate UUID
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Activity model
func (Activity) TableName() string {
	return "activities"
}
