package services

import (
	"testing"
	"time"

	"visa_crm_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuditContext(t *testing.T) {
	ws := &models.Workspace{ID: "ws-1", Name: "North Star Immigration"}
	user := &models.User{ID: "u-1", Name: "Amira", AuthRole: models.AuthRoleLawyer, WorkspaceID: &ws.ID, Workspace: ws}

	ctx := NewAuditContext(user, "10.0.0.1", "Mozilla")
	assert.Equal(t, "u-1", ctx.UserID)
	assert.Equal(t, "Amira", ctx.UserName)
	assert.Equal(t, models.AuthRoleLawyer, ctx.UserRole)
	assert.Equal(t, "ws-1", ctx.WorkspaceID)
	assert.Equal(t, "North Star Immigration", ctx.WorkspaceName)

	anonymous := NewAuditContext(nil, "10.0.0.2", "curl")
	assert.Empty(t, anonymous.UserID)
	assert.Equal(t, "10.0.0.2", anonymous.IPAddress)
}

func TestWriteAuditEvent(t *testing.T) {
	db := setupTestDB(t)

	ctx := AuditContext{
		UserID:        "user-123",
		UserName:      "Test User",
		UserRole:      models.AuthRoleAdmin,
		WorkspaceID:   "ws-123",
		WorkspaceName: "Test Workspace",
		IPAddress:     "127.0.0.1",
		UserAgent:     "TestAgent",
	}
	oldValues := map[string]string{"status": models.LeadStatusNew}
	newValues := map[string]string{"status": models.LeadStatusContacted}

	require.NoError(t, WriteAuditEvent(db, ctx, models.AuditActionUpdate, "Lead", "lead-1", "Li Wei", "Status changed", oldValues, newValues))

	var entry models.AuditLog
	require.NoError(t, db.First(&entry, "resource_id = ?", "lead-1").Error)
	assert.Equal(t, "user-123", *entry.UserID)
	assert.Equal(t, "ws-123", *entry.WorkspaceID)
	assert.Equal(t, models.AuditActionUpdate, entry.Action)
	assert.JSONEq(t, `{"status":"New"}`, entry.OldValues)

	changes := entry.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, "status", changes[0].Field)
	assert.Equal(t, models.LeadStatusContacted, changes[0].New)

	t.Run("system actor when no user", func(t *testing.T) {
		require.NoError(t, WriteAuditEvent(db, AuditContext{}, models.AuditActionImport, "Lead", "batch", "", "", nil, nil))

		var system models.AuditLog
		require.NoError(t, db.First(&system, "resource_id = ?", "batch").Error)
		assert.Equal(t, "system", system.UserName)
		assert.Nil(t, system.UserID)
	})

	t.Run("entries are immutable", func(t *testing.T) {
		err := db.Model(&entry).Update("description", "tampered").Error
		assert.Error(t, err)
		assert.Error(t, db.Delete(&entry).Error)
	})
}

func TestGetResourceAuditHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := AuditContext{UserID: "u", UserName: "U", UserRole: models.AuthRoleLawyer, WorkspaceID: "ws"}

	require.NoError(t, WriteAuditEvent(db, ctx, models.AuditActionCreate, "Client", "c-1", "Li Wei", "", nil, nil))
	require.NoError(t, WriteAuditEvent(db, ctx, models.AuditActionUpdate, "Client", "c-1", "Li Wei", "", nil, nil))
	require.NoError(t, WriteAuditEvent(db, ctx, models.AuditActionCreate, "Client", "c-2", "Other", "", nil, nil))

	logs, err := GetResourceAuditHistory(db, "Client", "c-1")
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestGetWorkspaceAuditLogs(t *testing.T) {
	db := setupTestDB(t)
	wsID, otherID := "ws-test-1", "ws-test-2"

	db.Create(&models.AuditLog{WorkspaceID: &wsID, UserName: "Sam", UserRole: "admin", ResourceType: "Lead", ResourceID: "1", ResourceName: "Li Wei", Action: models.AuditActionCreate, CreatedAt: time.Now().Add(-time.Hour)})
	db.Create(&models.AuditLog{WorkspaceID: &wsID, UserName: "Sam", UserRole: "admin", ResourceType: "Client", ResourceID: "2", ResourceName: "Omar Haddad", Action: models.AuditActionConvert, CreatedAt: time.Now()})
	db.Create(&models.AuditLog{WorkspaceID: &otherID, UserName: "Eve", UserRole: "admin", ResourceType: "Lead", ResourceID: "3", Action: models.AuditActionCreate, CreatedAt: time.Now()})

	logs, total, err := GetWorkspaceAuditLogs(db, wsID, AuditLogFilters{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, logs, 2)
	assert.Equal(t, "Omar Haddad", logs[0].ResourceName)

	logs, total, err = GetWorkspaceAuditLogs(db, wsID, AuditLogFilters{Action: string(models.AuditActionCreate)}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Li Wei", logs[0].ResourceName)

	_, total, err = GetWorkspaceAuditLogs(db, wsID, AuditLogFilters{SearchQuery: "Haddad"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
