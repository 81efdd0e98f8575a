package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWithPermissions(t *testing.T, user *models.User, mw echo.MiddlewareFunc) int {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/team", nil), rec)
	c.Set(ContextKeyUser, user)

	handler := LoadPermissions()(mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	require.NoError(t, handler(c))
	return rec.Code
}

func TestRequirePermission(t *testing.T) {
	testDB := setupTestDB(t)

	_, admin := createWorkspaceUser(t, testDB, models.AuthRoleAdmin, models.AccessLevelAdmin)
	_, member := createWorkspaceUser(t, testDB, models.AuthRoleLawyer, models.AccessLevelMember)
	_, viewer := createWorkspaceUser(t, testDB, models.AuthRoleLawyer, models.AccessLevelViewer)
	superAdmin := &models.User{ID: "sa", AuthRole: models.AuthRoleSuperAdmin}

	t.Run("full grant required for management", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, runWithPermissions(t, admin, RequirePermission(models.CapViewManageTeam)))
		assert.Equal(t, http.StatusForbidden, runWithPermissions(t, member, RequirePermission(models.CapViewManageTeam)))
		assert.Equal(t, http.StatusForbidden, runWithPermissions(t, viewer, RequirePermission(models.CapViewManageTeam)))
	})

	t.Run("view-only satisfies RequireCapability", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, runWithPermissions(t, viewer, RequireCapability(models.CapViewManageTeam)))
		assert.Equal(t, http.StatusForbidden, runWithPermissions(t, member, RequireCapability(models.CapViewManageTeam)))
	})

	t.Run("super-admin passes everything", func(t *testing.T) {
		for _, capability := range models.AllCapabilities {
			assert.Equal(t, http.StatusOK, runWithPermissions(t, superAdmin, RequirePermission(capability)))
		}
	})

	t.Run("workspace override applies", func(t *testing.T) {
		table := services.DefaultPermissions()
		table[models.AccessLevelMember][models.CapDeleteExport] = models.PermissionAllowed
		_, err := services.SaveWorkspacePermissions(testDB, *member.WorkspaceID, admin.ID, table)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, runWithPermissions(t, member, RequirePermission(models.CapDeleteExport)))
		assert.Equal(t, http.StatusForbidden, runWithPermissions(t, viewer, RequirePermission(models.CapDeleteExport)))
	})
}

func TestGetPermissionsFallsBackToDefaults(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(ContextKeyUser, &models.User{AuthRole: models.AuthRoleLawyer, AccessLevel: "Standard User"})

	perms := GetPermissions(c)
	assert.True(t, perms.Can(models.CapEditData))
	assert.False(t, perms.Can(models.CapFinancials))
}

func TestRequireActiveAccount(t *testing.T) {
	testDB := setupTestDB(t)
	e := echo.New()

	workspace, owner, err := services.CreateAccount(testDB, services.NewAccountInput{
		WorkspaceName: "Suspended Firm",
		OwnerName:     "Owner",
		OwnerEmail:    "owner@suspended.test",
		Password:      "Str0ng!Passw0rd",
	})
	require.NoError(t, err)

	handler := RequireActiveAccount()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(ContextKeyUser, owner)
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	_, err = services.UpdateAccount(testDB, owner.ID, services.AccountUpdate{AccountStatus: models.AccountStatusSuspended})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(ContextKeyUser, owner)
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, workspace.ID, *owner.WorkspaceID)
}
