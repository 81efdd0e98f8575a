package models

import (
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction represents the type of operation performed
type AuditAction string

const (
	AuditActionCreate   AuditAction = "CREATE"
	AuditActionUpdate   AuditAction = "UPDATE"
	AuditActionDelete   AuditAction = "DELETE"
	AuditActionConvert  AuditAction = "CONVERT" // lead converted to client
	AuditActionImport   AuditAction = "IMPORT"
	AuditActionExport   AuditAction = "EXPORT"
	AuditActionDownload AuditAction = "DOWNLOAD"
	AuditActionLogin    AuditAction = "LOGIN"
	AuditActionLogout   AuditAction = "LOGOUT"
)

// AuditLog is an immutable record of a data operation
type AuditLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_audit_created_at" json:"created_at"`

	UserID   *string `gorm:"type:uuid;index:idx_audit_user" json:"user_id,omitempty"`
	UserName string  `gorm:"not null" json:"user_name"` // denormalized
	UserRole string  `gorm:"not null" json:"user_role"`

	WorkspaceID   *string `gorm:"type:uuid;index:idx_audit_workspace" json:"workspace_id,omitempty"`
	WorkspaceName string  `json:"workspace_name,omitempty"`

	ResourceType string `gorm:"not null;index:idx_audit_resource" json:"resource_type"` // e.g. "Lead", "Client"
	ResourceID   string `gorm:"not null;index:idx_audit_resource" json:"resource_id"`
	ResourceName string `json:"resource_name,omitempty"`

	Action      AuditAction `gorm:"not null;index:idx_audit_action" json:"action"`
	Description string      `gorm:"type:text" json:"description,omitempty"`

	OldValues string `gorm:"type:text" json:"old_values,omitempty"` // JSON encoded
	NewValues string `gorm:"type:text" json:"new_values,omitempty"` // JSON encoded

	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// AuditChange represents a single field change
type AuditChange struct {
	Field string      `json:"field"`
	Old   interface{} `json:"old"`
	New   interface{} `json:"new"`
}

// Changes diffs OldValues against NewValues, sorted by field name
func (a *AuditLog) Changes() []AuditChange {
	oldMap := make(map[string]interface{})
	newMap := make(map[string]interface{})
	if a.OldValues != "" {
		_ = json.Unmarshal([]byte(a.OldValues), &oldMap)
	}
	if a.NewValues != "" {
		_ = json.Unmarshal([]byte(a.NewValues), &newMap)
	}

	keys := make(map[string]struct{})
	for k := range oldMap {
		keys[k] = struct{}{}
	}
	for k := range newMap {
		keys[k] = struct{}{}
	}

	var changes []AuditChange
	for k := range keys {
		if !reflect.DeepEqual(oldMap[k], newMap[k]) {
			changes = append(changes, AuditChange{Field: k, Old: oldMap[k], New: newMap[k]})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate prevents modification of audit logs
func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

// BeforeDelete prevents deletion of audit logs
func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}
