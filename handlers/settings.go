package handlers

import (
	"net/http"
	"time"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

// GetPermissionSettingsHandler returns the workspace permission table
func GetPermissionSettingsHandler(c echo.Context) error {
	table, err := services.GetWorkspacePermissions(db.DB, middleware.GetWorkspaceID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

// UpdatePermissionSettingsHandler replaces the workspace permission table
func UpdatePermissionSettingsHandler(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	user := middleware.GetCurrentUser(c)

	before, err := services.GetWorkspacePermissions(db.DB, workspaceID)
	if err != nil {
		return respondServiceError(c, err)
	}

	var table models.PermissionTable
	if err := c.Bind(&table); err != nil {
		return badRequest(c)
	}
	saved, err := services.SaveWorkspacePermissions(db.DB, workspaceID, user.ID, table)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Permissions", workspaceID, "", "Permission table updated", before, saved)
	return respondWithToast(c, http.StatusOK, saved, "toast.settings.permissions_saved", "")
}

// ResetPermissionSettingsHandler restores the default permission table
func ResetPermissionSettingsHandler(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if err := services.ResetWorkspacePermissions(db.DB, workspaceID); err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Permissions", workspaceID, "", "Permission table reset to defaults", nil, nil)
	return respondWithToast(c, http.StatusOK, services.DefaultPermissions(), "toast.settings.permissions_reset", "")
}

// AuditLogHandler pages through the workspace audit trail
func AuditLogHandler(c echo.Context) error {
	filters := services.AuditLogFilters{
		ResourceType: c.QueryParam("resource_type"),
		Action:       c.QueryParam("action"),
		UserID:       c.QueryParam("user_id"),
		SearchQuery:  c.QueryParam("q"),
	}
	if from, err := time.Parse("2006-01-02", c.QueryParam("from")); err == nil {
		filters.DateFrom = from
	}
	if to, err := time.Parse("2006-01-02", c.QueryParam("to")); err == nil {
		filters.DateTo = to.Add(24*time.Hour - time.Nanosecond)
	}
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 25)

	logs, total, err := services.GetWorkspaceAuditLogs(db.DB, middleware.GetWorkspaceID(c), filters, page, pageSize)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"items":     logs,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
