package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"visa_crm_go/db"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open("file:mem_"+uuid.New().String()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := testDB.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = testDB
	return testDB
}

func createWorkspaceUser(t *testing.T, testDB *gorm.DB, authRole, accessLevel string) (*models.Workspace, *models.User) {
	ws := &models.Workspace{Name: "Test Workspace " + uuid.New().String()[:8]}
	require.NoError(t, testDB.Create(ws).Error)

	user := &models.User{
		Name:        "Test User",
		Email:       uuid.New().String() + "@example.com",
		Password:    "hash",
		WorkspaceID: &ws.ID,
		AuthRole:    authRole,
		AccessLevel: accessLevel,
		IsActive:    true,
	}
	require.NoError(t, testDB.Create(user).Error)
	return ws, user
}

func decodeToast(t *testing.T, rec *httptest.ResponseRecorder) Toast {
	var resp ToastResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Toast
}

func TestRequireAuth(t *testing.T) {
	testDB := setupTestDB(t)
	e := echo.New()

	ws, user := createWorkspaceUser(t, testDB, models.AuthRoleAdmin, models.AccessLevelAdmin)
	session, err := services.CreateSession(testDB, user, "127.0.0.1", "test-agent")
	require.NoError(t, err)

	handler := RequireAuth()(func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	t.Run("ValidSession", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, user.ID, GetCurrentUser(c).ID)
		assert.Equal(t, ws.ID, GetCurrentWorkspace(c).ID)
		assert.Equal(t, ws.ID, GetWorkspaceID(c))
	})

	t.Run("NoCookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, handler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, ToastDestructive, decodeToast(t, rec).Variant)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "invalid-token"})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, handler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		// cookie is cleared
		cleared := false
		for _, cookie := range rec.Result().Cookies() {
			if cookie.Name == SessionCookieName && cookie.MaxAge < 0 {
				cleared = true
			}
		}
		assert.True(t, cleared)
	})

	t.Run("InactiveUser", func(t *testing.T) {
		_, inactive := createWorkspaceUser(t, testDB, models.AuthRoleLawyer, models.AccessLevelMember)
		// default:true overrides a zero value on create
		testDB.Model(inactive).Update("is_active", false)

		inactiveSession, err := services.CreateSession(testDB, inactive, "", "")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: inactiveSession.Token})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, handler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAuthRole(t *testing.T) {
	e := echo.New()
	handler := RequireAuthRole(models.AuthRoleSuperAdmin)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	t.Run("HasRole", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set(ContextKeyUser, &models.User{AuthRole: models.AuthRoleSuperAdmin})

		assert.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingRole", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set(ContextKeyUser, &models.User{AuthRole: models.AuthRoleAdmin})

		assert.NoError(t, handler(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("NoUser", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		assert.NoError(t, handler(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireWorkspace(t *testing.T) {
	e := echo.New()
	handler := RequireWorkspace()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	wsID := "ws-1"
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(ContextKeyUser, &models.User{WorkspaceID: &wsID})
	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(ContextKeyUser, &models.User{AuthRole: models.AuthRoleSuperAdmin})
	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetWorkspaceScopedQuery(t *testing.T) {
	testDB := setupTestDB(t)
	e := echo.New()

	ws, user := createWorkspaceUser(t, testDB, models.AuthRoleAdmin, models.AccessLevelAdmin)
	other, _ := createWorkspaceUser(t, testDB, models.AuthRoleAdmin, models.AccessLevelAdmin)
	require.NoError(t, testDB.Create(&models.Lead{WorkspaceID: ws.ID, Name: "Mine", Email: "mine@example.com"}).Error)
	require.NoError(t, testDB.Create(&models.Lead{WorkspaceID: other.ID, Name: "Theirs", Email: "theirs@example.com"}).Error)

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(ContextKeyUser, user)

	var leads []models.Lead
	require.NoError(t, GetWorkspaceScopedQuery(c, testDB).Find(&leads).Error)
	require.Len(t, leads, 1)
	assert.Equal(t, "Mine", leads[0].Name)

	// no user matches nothing
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	leads = nil
	require.NoError(t, GetWorkspaceScopedQuery(c, testDB).Find(&leads).Error)
	assert.Empty(t, leads)
}
