package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"visa_crm_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestAuditContext(t *testing.T) {
	e := echo.New()

	t.Run("FullContext", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "test-agent")
		c := e.NewContext(req, httptest.NewRecorder())

		wsID := "ws-456"
		c.Set(ContextKeyUser, &models.User{ID: "user-123", Name: "Test User", AuthRole: models.AuthRoleAdmin, WorkspaceID: &wsID})
		c.Set(ContextKeyWorkspace, &models.Workspace{ID: wsID, Name: "Maple Immigration"})

		handler := AuditContext()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, handler(c))

		auditCtx := GetAuditContext(c)
		assert.Equal(t, "user-123", auditCtx.UserID)
		assert.Equal(t, "Test User", auditCtx.UserName)
		assert.Equal(t, models.AuthRoleAdmin, auditCtx.UserRole)
		assert.Equal(t, "ws-456", auditCtx.WorkspaceID)
		assert.Equal(t, "Maple Immigration", auditCtx.WorkspaceName)
		assert.Equal(t, "test-agent", auditCtx.UserAgent)
	})

	t.Run("Anonymous", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		handler := AuditContext()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		assert.NoError(t, handler(c))

		auditCtx := GetAuditContext(c)
		assert.Empty(t, auditCtx.UserID)
		assert.Empty(t, auditCtx.WorkspaceID)
	})
}
