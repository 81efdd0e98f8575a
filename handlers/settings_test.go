package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionSettingsHandlers(t *testing.T) {
	database := setupTestDB(t)
	ws := createWorkspace(t, database, "Settings Firm")
	admin := createUser(t, database, ws, models.AuthRoleAdmin, models.AccessLevelAdmin)

	t.Run("Get returns defaults", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/settings/permissions", nil)
		asUser(c, admin, ws)

		assert.NoError(t, GetPermissionSettingsHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var table map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
		assert.Equal(t, "view-only", table["Viewer"]["viewManageTeam"])
		assert.Equal(t, false, table["Member"]["financials"])
		assert.Equal(t, true, table["Admin"]["financials"])
	})

	t.Run("Put saves an override", func(t *testing.T) {
		body := `{"Admin":{"financials":true,"highLevelSettings":true,"viewManageTeam":true,"deleteExport":true,"editData":true,"viewData":true},
			"Member":{"financials":true,"editData":true,"viewData":true},
			"Viewer":{"viewData":true,"viewManageTeam":"view-only"}}`
		_, c, rec := setupEcho(http.MethodPut, "/api/settings/permissions", strings.NewReader(body))
		asUser(c, admin, ws)

		assert.NoError(t, UpdatePermissionSettingsHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		table, err := services.GetWorkspacePermissions(database, ws.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PermissionAllowed, table.Lookup(models.AccessLevelMember, models.CapFinancials))
	})

	t.Run("Put rejects view-only outside team management", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPut, "/api/settings/permissions", strings.NewReader(`{"Member":{"editData":"view-only"}}`))
		asUser(c, admin, ws)

		assert.NoError(t, UpdatePermissionSettingsHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Put accepts alias level names", func(t *testing.T) {
		body := `{"admin":{"financials":true},"Standard User":{"deleteExport":true}}`
		_, c, rec := setupEcho(http.MethodPut, "/api/settings/permissions", strings.NewReader(body))
		asUser(c, admin, ws)

		assert.NoError(t, UpdatePermissionSettingsHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		perms, err := services.PermissionsForUser(database, admin)
		require.NoError(t, err)
		assert.True(t, perms.Can(models.CapHighLevelSettings))

		member := createUser(t, database, ws, models.AuthRoleLawyer, models.AccessLevelMember)
		perms, err = services.PermissionsForUser(database, member)
		require.NoError(t, err)
		assert.True(t, perms.Can(models.CapDeleteExport))
		assert.True(t, perms.Can(models.CapViewData))
	})

	t.Run("Put rejects locking admins out", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPut, "/api/settings/permissions", strings.NewReader(`{"Admin":{"highLevelSettings":false}}`))
		asUser(c, admin, ws)

		assert.NoError(t, UpdatePermissionSettingsHandler(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Delete resets to defaults", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodDelete, "/api/settings/permissions", nil)
		asUser(c, admin, ws)

		assert.NoError(t, ResetPermissionSettingsHandler(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		table, err := services.GetWorkspacePermissions(database, ws.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PermissionDenied, table.Lookup(models.AccessLevelMember, models.CapFinancials))
	})
}

func TestAuditLogHandler(t *testing.T) {
	database := setupTestDB(t)
	ws := createWorkspace(t, database, "Audit Firm")
	admin := createUser(t, database, ws, models.AuthRoleAdmin, models.AccessLevelAdmin)

	auditCtx := services.NewAuditContext(admin, "127.0.0.1", "test")
	require.NoError(t, services.WriteAuditEvent(database, auditCtx, models.AuditActionCreate, "Lead", "lead-1", "Lead One", "Lead created", nil, nil))
	require.NoError(t, services.WriteAuditEvent(database, auditCtx, models.AuditActionDelete, "Lead", "lead-1", "Lead One", "Lead deleted", nil, nil))

	_, c, rec := setupEcho(http.MethodGet, "/api/settings/audit-log?action=DELETE", nil)
	asUser(c, admin, ws)

	assert.NoError(t, AuditLogHandler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []models.AuditLog `json:"items"`
		Total int64             `json:"total"`
		Page  int               `json:"page"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, 1, resp.Page)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Lead deleted", resp.Items[0].Description)
}
