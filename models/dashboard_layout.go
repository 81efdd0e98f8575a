package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Widget types available on the dashboard
const (
	WidgetTypeStats         = "stats"
	WidgetTypeLeadsPipeline = "leads-pipeline"
	WidgetTypeTasks         = "tasks"
	WidgetTypeRecentClients = "recent-clients"
	WidgetTypeFinancials    = "financials"
	WidgetTypeActivity      = "activity"
	WidgetTypeTeam          = "team"
)

// DefaultLayoutKey is the key of the main dashboard layout
const DefaultLayoutKey = "dashboard"

// DashboardWidget is one positioned widget on the grid
type DashboardWidget struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
}

// UserSetting is a key-value row scoped to one user. Dashboard layouts are stored
// here as JSON under their layout key.
type UserSetting struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_setting_key" json:"user_id"`
	Key    string `gorm:"column:setting_key;not null;uniqueIndex:idx_user_setting_key" json:"key"`
	Value  string `gorm:"type:text;not null" json:"value"`
}

// BeforeCreate hook to generate UUID
func (s *UserSetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for UserSetting model
func (UserSetting) TableName() string {
	return "user_settings"
}

func IsValidWidgetType(t string) bool {
	switch t {
	case WidgetTypeStats, WidgetTypeLeadsPipeline, WidgetTypeTasks, WidgetTypeRecentClients,
		WidgetTypeFinancials, WidgetTypeActivity, WidgetTypeTeam:
		return true
	}
	return false
}
