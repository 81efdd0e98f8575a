package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"visa_crm_go/config"
	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "Sup3r-Secret-Pass!"

const testSecret = "handler-test-secret"

func setupTestDB(t *testing.T) *gorm.DB {
	// unique shared-memory name isolates tests while async audit writes still see the tables
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.AutoMigrate(models.All()...)
	assert.NoError(t, err)

	services.Storage = services.NewLocalStorage(t.TempDir())

	// Set global DB
	db.DB = testDB

	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:        "test",
		SessionSecret:      testSecret,
		AppURL:             "http://localhost:8080",
		IntakeLinkTTLHours: 72,
	})

	return e, c, rec
}

// asUser puts the user and their workspace on the context the way RequireAuth does
func asUser(c echo.Context, user *models.User, ws *models.Workspace) {
	c.Set(middleware.ContextKeyUser, user)
	if ws != nil {
		c.Set(middleware.ContextKeyWorkspace, ws)
	}
}

func createWorkspace(t *testing.T, database *gorm.DB, name string) *models.Workspace {
	ws := &models.Workspace{Name: name}
	require.NoError(t, database.Create(ws).Error)
	return ws
}

func createUser(t *testing.T, database *gorm.DB, ws *models.Workspace, authRole, accessLevel string) *models.User {
	hashed, err := services.HashPassword(testPassword)
	require.NoError(t, err)

	user := &models.User{
		Name:        "User " + uuid.New().String()[:4],
		Email:       uuid.New().String()[:8] + "@firm.test",
		Password:    hashed,
		AuthRole:    authRole,
		AccessLevel: accessLevel,
		IsActive:    true,
	}
	if ws != nil {
		user.WorkspaceID = stringToPtr(ws.ID)
	}
	require.NoError(t, database.Create(user).Error)
	return user
}

func decodeToast(t *testing.T, rec *httptest.ResponseRecorder) middleware.Toast {
	var resp middleware.ToastResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Toast
}

func stringToPtr(s string) *string {
	return &s
}
