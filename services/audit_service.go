package services

import (
	"encoding/json"
	"log"
	"time"

	"visa_crm_go/models"

	"gorm.io/gorm"
)

// AuditContext contains contextual information for audit logging
type AuditContext struct {
	UserID        string
	UserName      string
	UserRole      string
	WorkspaceID   string
	WorkspaceName string
	IPAddress     string
	UserAgent     string
}

// NewAuditContext builds an audit context for an authenticated user
func NewAuditContext(user *models.User, ip, userAgent string) AuditContext {
	ctx := AuditContext{IPAddress: ip, UserAgent: userAgent}
	if user == nil {
		return ctx
	}
	ctx.UserID = user.ID
	ctx.UserName = user.Name
	ctx.UserRole = user.AuthRole
	if user.WorkspaceID != nil {
		ctx.WorkspaceID = *user.WorkspaceID
	}
	if user.Workspace != nil {
		ctx.WorkspaceName = user.Workspace.Name
	}
	return ctx
}

// LogAuditEvent creates a new audit log entry asynchronously
func LogAuditEvent(
	db *gorm.DB,
	ctx AuditContext,
	action models.AuditAction,
	resourceType string,
	resourceID string,
	resourceName string,
	description string,
	oldValues interface{},
	newValues interface{},
) {
	go func() {
		if err := WriteAuditEvent(db, ctx, action, resourceType, resourceID, resourceName, description, oldValues, newValues); err != nil {
			log.Printf("[AUDIT] Failed to create audit log: %v", err)
		}
	}()
}

// WriteAuditEvent is the synchronous form of LogAuditEvent
func WriteAuditEvent(
	db *gorm.DB,
	ctx AuditContext,
	action models.AuditAction,
	resourceType string,
	resourceID string,
	resourceName string,
	description string,
	oldValues interface{},
	newValues interface{},
) error {
	var oldJSON, newJSON string
	if oldValues != nil {
		if bytes, err := json.Marshal(oldValues); err == nil {
			oldJSON = string(bytes)
		}
	}
	if newValues != nil {
		if bytes, err := json.Marshal(newValues); err == nil {
			newJSON = string(bytes)
		}
	}

	userName := ctx.UserName
	if userName == "" {
		userName = "system"
	}
	userRole := ctx.UserRole
	if userRole == "" {
		userRole = "system"
	}

	entry := models.AuditLog{
		UserID:        ptrIfNotEmpty(ctx.UserID),
		UserName:      userName,
		UserRole:      userRole,
		WorkspaceID:   ptrIfNotEmpty(ctx.WorkspaceID),
		WorkspaceName: ctx.WorkspaceName,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		ResourceName:  resourceName,
		Action:        action,
		Description:   description,
		OldValues:     oldJSON,
		NewValues:     newJSON,
		IPAddress:     ctx.IPAddress,
		UserAgent:     ctx.UserAgent,
	}
	return db.Create(&entry).Error
}

// GetResourceAuditHistory retrieves the audit history for a specific resource
func GetResourceAuditHistory(db *gorm.DB, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// AuditLogFilters contains filter options for audit log queries
type AuditLogFilters struct {
	UserID       string
	ResourceType string
	Action       string
	DateFrom     time.Time
	DateTo       time.Time
	SearchQuery  string
}

// GetWorkspaceAuditLogs retrieves paginated audit logs for a workspace
func GetWorkspaceAuditLogs(
	db *gorm.DB,
	workspaceID string,
	filters AuditLogFilters,
	page, pageSize int,
) ([]models.AuditLog, int64, error) {
	query := db.Model(&models.AuditLog{}).Where("workspace_id = ?", workspaceID)

	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.ResourceType != "" {
		query = query.Where("resource_type = ?", filters.ResourceType)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if !filters.DateFrom.IsZero() {
		query = query.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		query = query.Where("created_at <= ?", filters.DateTo)
	}
	if filters.SearchQuery != "" {
		searchPattern := "%" + filters.SearchQuery + "%"
		query = query.Where(
			"resource_name LIKE ? OR description LIKE ? OR user_name LIKE ?",
			searchPattern, searchPattern, searchPattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	var logs []models.AuditLog
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error

	return logs, total, err
}
