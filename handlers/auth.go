package handlers

import (
	"net/http"
	"strings"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"
	"visa_crm_go/templates/partials"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginPostHandler authenticates a team member and sets the session cookie.
// Accepts JSON or form bodies.
func LoginPostHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return middleware.RespondError(c, http.StatusBadRequest, "toast.error.validation", "Email and password are required")
	}

	user, err := services.Authenticate(db.DB, req.Email, req.Password)
	if err != nil {
		services.LogSecurityEvent("LOGIN_FAILED", "", req.Email+" "+err.Error())
		return respondServiceError(c, err)
	}

	if user.WorkspaceID != nil {
		suspended, err := services.IsWorkspaceSuspended(db.DB, *user.WorkspaceID)
		if err != nil {
			return respondServiceError(c, err)
		}
		if suspended {
			return middleware.RespondError(c, http.StatusForbidden, "toast.error.account_suspended", "")
		}
	}

	session, err := services.CreateSession(db.DB, user, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return respondServiceError(c, err)
	}
	middleware.SetSessionCookie(c, session)
	if user.Language != "" {
		middleware.SetLanguageCookie(c, user.Language)
	}

	auditCtx := services.NewAuditContext(user, c.RealIP(), c.Request().UserAgent())
	services.LogAuditEvent(db.DB, auditCtx, models.AuditActionLogin, "User", user.ID, user.Name, "User logged in", nil, nil)

	return c.JSON(http.StatusOK, user)
}

// LogoutHandler ends the current session
func LogoutHandler(c echo.Context) error {
	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if user := middleware.GetCurrentUser(c); user != nil {
			services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionLogout, "User", user.ID, user.Name, "User logged out", nil, nil)
		}
		if err := services.DeleteSession(db.DB, cookie.Value); err != nil {
			return respondServiceError(c, err)
		}
	}
	middleware.ClearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// MeHandler returns the signed-in user
func MeHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, middleware.GetCurrentUser(c))
}

// MyPermissionsHandler returns the effective capability map for the signed-in user
func MyPermissionsHandler(c echo.Context) error {
	perms := middleware.GetPermissions(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_level": perms.AccessLevel,
		"permissions":  perms.Map(),
	})
}

// NavigationHandler returns the sidebar entries visible to the user
func NavigationHandler(c echo.Context) error {
	items := services.VisibleNavigation(middleware.GetCurrentUser(c), middleware.GetPermissions(c))
	return c.JSON(http.StatusOK, items)
}

// SidebarPartialHandler renders the sidebar as an HTML fragment
func SidebarPartialHandler(c echo.Context) error {
	items := services.VisibleNavigation(middleware.GetCurrentUser(c), middleware.GetPermissions(c))
	component := partials.Sidebar(items, middleware.GetLocale(c), c.QueryParam("active"))
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return component.Render(c.Request().Context(), c.Response().Writer)
}
